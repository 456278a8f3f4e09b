package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/event"
	"github.com/YashMane007/Crypto-track-pappa/internal/storage"
)

// Engine is the live valuation core. All hot state (holdings registry,
// valuation cache, exchange rate) is owned by the single goroutine draining
// the inbox, so tick batches, mutation commits, and rate changes apply in
// dequeue order with no interleaving. The RWMutex exists only so external
// readers (HTTP layer, tests) can take consistent snapshots.
type Engine struct {
	gw    storage.Gateway
	inbox chan event.Event

	// Boundary: notified with fresh totals after every committed mutation,
	// rate change, and scheduler refresh.
	onTotals func(domain.Totals)

	mu       sync.RWMutex
	holdings map[string]*domain.Holding        // keyed by gateway id
	index    map[string]string                 // normalized symbol -> holding id
	entries  map[string]*domain.ValuationEntry // normalized symbol -> derived state
	rate     decimal.Decimal

	// Serializes mutation round-trips: validate, call the gateway, enqueue
	// the commit. Held across the gateway call so two mutations can never
	// interleave their critical sections.
	muMutate sync.Mutex

	// Closed when Run returns; unblocks commit waiters during shutdown.
	stopped chan struct{}
}

// New creates an engine around a persistence gateway. onTotals may be nil.
func New(gw storage.Gateway, inboxSize int, onTotals func(domain.Totals)) *Engine {
	return &Engine{
		gw:       gw,
		inbox:    make(chan event.Event, inboxSize),
		onTotals: onTotals,
		holdings: make(map[string]*domain.Holding),
		index:    make(map[string]string),
		entries:  make(map[string]*domain.ValuationEntry),
		rate:     storage.DefaultRate,
		stopped:  make(chan struct{}),
	}
}

// Inbox returns the event channel. The feed worker and scheduler send here.
func (e *Engine) Inbox() chan<- event.Event {
	return e.inbox
}

// Run starts the main event loop. Must run in exactly one goroutine.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.stopped)
	slog.Info("Valuation engine started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Valuation engine stopping...")
			return
		case ev := <-e.inbox:
			e.apply(ev)
		}
	}
}

func (e *Engine) apply(ev event.Event) {
	switch ev := ev.(type) {
	case *event.TickBatch:
		e.applyTicks(ev.Ticks)
	case *event.HoldingAdded:
		e.applyAdd(ev)
		e.publishTotals()
		close(ev.Done)
	case *event.HoldingRenamed:
		e.applyRename(ev)
		e.publishTotals()
		close(ev.Done)
	case *event.HoldingResized:
		e.applyResize(ev)
		e.publishTotals()
		close(ev.Done)
	case *event.HoldingRemoved:
		e.applyRemove(ev)
		e.publishTotals()
		close(ev.Done)
	case *event.RateChanged:
		e.applyRate(ev)
		e.publishTotals()
		close(ev.Done)
	case *event.Refresh:
		e.publishTotals()
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

// applyTicks filters a whole-market batch down to tracked symbols and
// reprices them. Lookup is O(1) per tick via the symbol index, independent of
// registry size. Later ticks for the same symbol overwrite earlier ones;
// untracked symbols are dropped with no side effect.
func (e *Engine) applyTicks(ticks []domain.Tick) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range ticks {
		sym := domain.NormalizeSymbol(t.Symbol)
		if _, tracked := e.index[sym]; !tracked {
			continue
		}
		e.repriceLocked(sym, t.Price)
	}
}

// repriceLocked replaces the entry for sym with one derived from price.
// All three fields change in a single step so a reader can never observe a
// quote total computed from one price and a secondary total from another.
func (e *Engine) repriceLocked(sym string, price decimal.Decimal) {
	id, ok := e.index[sym]
	if !ok {
		return
	}
	quote := price.Mul(e.holdings[id].Quantity)
	secondary := quote.Mul(e.rate)
	e.entries[sym] = &domain.ValuationEntry{
		Symbol:         sym,
		LastUnitPrice:  &price,
		QuoteTotal:     &quote,
		SecondaryTotal: &secondary,
	}
}

func (e *Engine) applyAdd(ev *event.HoldingAdded) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := ev.Holding
	sym := domain.NormalizeSymbol(h.Symbol)
	e.holdings[h.ID] = &h
	e.index[sym] = h.ID
	e.entries[sym] = &domain.ValuationEntry{Symbol: sym}
}

func (e *Engine) applyRename(ev *event.HoldingRenamed) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.holdings[ev.ID]
	if !ok {
		return
	}
	oldSym := domain.NormalizeSymbol(ev.OldSymbol)
	newSym := domain.NormalizeSymbol(ev.NewSymbol)
	h.Symbol = newSym
	if oldSym == newSym {
		return
	}
	// Key migration: the old entry dies with its price history; the new one
	// starts unpriced until the next matching tick.
	delete(e.index, oldSym)
	delete(e.entries, oldSym)
	e.index[newSym] = ev.ID
	e.entries[newSym] = &domain.ValuationEntry{Symbol: newSym}
}

func (e *Engine) applyResize(ev *event.HoldingResized) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.holdings[ev.ID]
	if !ok {
		return
	}
	h.Quantity = ev.Quantity
	sym := domain.NormalizeSymbol(h.Symbol)
	if entry := e.entries[sym]; entry.Priced() {
		// Recompute from the cached price; no feed wait required.
		e.repriceLocked(sym, *entry.LastUnitPrice)
	}
}

func (e *Engine) applyRemove(ev *event.HoldingRemoved) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.holdings[ev.ID]
	if !ok {
		return
	}
	sym := domain.NormalizeSymbol(h.Symbol)
	delete(e.holdings, ev.ID)
	delete(e.index, sym)
	delete(e.entries, sym)
}

func (e *Engine) applyRate(ev *event.RateChanged) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = ev.Rate
	// Fan out: every priced entry gets its secondary total recomputed from
	// the existing quote total. Prices and quote totals are untouched.
	for sym, entry := range e.entries {
		if !entry.Priced() {
			continue
		}
		secondary := entry.QuoteTotal.Mul(ev.Rate)
		e.entries[sym] = &domain.ValuationEntry{
			Symbol:         sym,
			LastUnitPrice:  entry.LastUnitPrice,
			QuoteTotal:     entry.QuoteTotal,
			SecondaryTotal: &secondary,
		}
	}
}

func (e *Engine) publishTotals() {
	if e.onTotals == nil {
		return
	}
	e.onTotals(e.AggregateTotal())
}

// commit enqueues a gateway-confirmed mutation and waits for the loop to
// apply it, so the caller observes its own write. If the loop has already
// exited, the mutation is durable but can no longer be applied locally; the
// caller gets ErrUnavailable instead of blocking through shutdown.
func (e *Engine) commit(ev event.Event, done chan struct{}) error {
	select {
	case e.inbox <- ev:
	case <-e.stopped:
		return fmt.Errorf("%w: engine stopped", domain.ErrUnavailable)
	}
	select {
	case <-done:
		return nil
	case <-e.stopped:
		return fmt.Errorf("%w: engine stopped", domain.ErrUnavailable)
	}
}

// Holdings returns a snapshot of all tracked holdings, sorted by symbol.
func (e *Engine) Holdings() []domain.Holding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Holding, 0, len(e.holdings))
	for _, h := range e.holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Valuation returns a copy of the cached entry for symbol, if tracked.
func (e *Engine) Valuation(symbol string) (domain.ValuationEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[domain.NormalizeSymbol(symbol)]
	if !ok {
		return domain.ValuationEntry{}, false
	}
	return *entry, true
}

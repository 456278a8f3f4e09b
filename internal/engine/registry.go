package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/event"
)

// Registry mutations. Each operation validates locally first (no network
// call on bad input or detectable conflicts), then round-trips through the
// gateway, and only commits local state after the gateway confirmed. A
// gateway failure leaves local state untouched and surfaces to the caller.

// Bootstrap replaces the local registry and rate with the persisted state.
// Called once before the event loop starts serving mutations.
func (e *Engine) Bootstrap(ctx context.Context) error {
	holdings, err := e.gw.List(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap holdings: %w", err)
	}
	rate, err := e.gw.GetRate(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap rate: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.holdings = make(map[string]*domain.Holding, len(holdings))
	e.index = make(map[string]string, len(holdings))
	e.entries = make(map[string]*domain.ValuationEntry, len(holdings))
	for i := range holdings {
		h := holdings[i]
		sym := domain.NormalizeSymbol(h.Symbol)
		e.holdings[h.ID] = &h
		e.index[sym] = h.ID
		e.entries[sym] = &domain.ValuationEntry{Symbol: sym}
	}
	e.rate = rate

	slog.Info("Registry bootstrapped",
		slog.Int("holdings", len(holdings)),
		slog.String("rate", rate.String()))
	return nil
}

// Add tracks a new holding. The id comes back from the gateway.
func (e *Engine) Add(ctx context.Context, symbol string, quantity decimal.Decimal) (domain.Holding, error) {
	sym := domain.NormalizeSymbol(symbol)
	if sym == "" {
		return domain.Holding{}, fmt.Errorf("%w: empty symbol", domain.ErrValidation)
	}
	if quantity.IsNegative() {
		return domain.Holding{}, fmt.Errorf("%w: negative quantity", domain.ErrValidation)
	}

	e.muMutate.Lock()
	defer e.muMutate.Unlock()
	if _, exists := e.lookup(sym); exists {
		return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrConflict, sym)
	}

	h, err := e.gw.Create(ctx, sym, quantity)
	if err != nil {
		return domain.Holding{}, err
	}

	ev := &event.HoldingAdded{Commit: event.NewCommit(), Holding: h}
	if err := e.commit(ev, ev.Done); err != nil {
		return domain.Holding{}, err
	}
	return h, nil
}

// Rename changes a holding's symbol. Valuation continuity is intentionally
// not preserved across the key migration.
func (e *Engine) Rename(ctx context.Context, id, newSymbol string) (domain.Holding, error) {
	newSym := domain.NormalizeSymbol(newSymbol)
	if newSym == "" {
		return domain.Holding{}, fmt.Errorf("%w: empty symbol", domain.ErrValidation)
	}

	e.muMutate.Lock()
	defer e.muMutate.Unlock()
	h, ok := e.holding(id)
	if !ok {
		return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if otherID, exists := e.lookup(newSym); exists && otherID != id {
		return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrConflict, newSym)
	}

	if err := e.gw.RenameSymbol(ctx, id, newSym); err != nil {
		return domain.Holding{}, err
	}

	ev := &event.HoldingRenamed{
		Commit:    event.NewCommit(),
		ID:        id,
		OldSymbol: h.Symbol,
		NewSymbol: newSym,
	}
	if err := e.commit(ev, ev.Done); err != nil {
		return domain.Holding{}, err
	}
	h.Symbol = newSym
	return h, nil
}

// Resize changes a holding's quantity.
func (e *Engine) Resize(ctx context.Context, id string, quantity decimal.Decimal) (domain.Holding, error) {
	if quantity.IsNegative() {
		return domain.Holding{}, fmt.Errorf("%w: negative quantity", domain.ErrValidation)
	}

	e.muMutate.Lock()
	defer e.muMutate.Unlock()
	h, ok := e.holding(id)
	if !ok {
		return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if err := e.gw.SetQuantity(ctx, id, quantity); err != nil {
		return domain.Holding{}, err
	}

	ev := &event.HoldingResized{Commit: event.NewCommit(), ID: id, Quantity: quantity}
	if err := e.commit(ev, ev.Done); err != nil {
		return domain.Holding{}, err
	}
	h.Quantity = quantity
	return h, nil
}

// Remove stops tracking a holding and deletes its valuation entry.
func (e *Engine) Remove(ctx context.Context, id string) error {
	e.muMutate.Lock()
	defer e.muMutate.Unlock()
	if _, ok := e.holding(id); !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if err := e.gw.Delete(ctx, id); err != nil {
		return err
	}

	ev := &event.HoldingRemoved{Commit: event.NewCommit(), ID: id}
	return e.commit(ev, ev.Done)
}

func (e *Engine) lookup(sym string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.index[sym]
	return id, ok
}

func (e *Engine) holding(id string) (domain.Holding, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.holdings[id]
	if !ok {
		return domain.Holding{}, false
	}
	return *h, true
}

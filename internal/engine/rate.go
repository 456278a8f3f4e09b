package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/event"
)

// Rate returns the current exchange rate.
func (e *Engine) Rate() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rate
}

// SetRate persists a new exchange rate and recomputes the secondary total of
// every cached entry from its existing quote total. Prices are not refetched.
func (e *Engine) SetRate(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", domain.ErrValidation)
	}

	e.muMutate.Lock()
	defer e.muMutate.Unlock()
	if err := e.gw.SetRate(ctx, rate); err != nil {
		return err
	}

	ev := &event.RateChanged{Commit: event.NewCommit(), Rate: rate}
	return e.commit(ev, ev.Done)
}

package engine

import (
	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// AggregateTotal sums the current valuation snapshot. Pure read-then-reduce:
// no state changes, safe to call at any cadence. Unpriced entries contribute
// zero by policy.
func (e *Engine) AggregateTotal() domain.Totals {
	e.mu.RLock()
	defer e.mu.RUnlock()

	quote := decimal.Zero
	secondary := decimal.Zero
	for _, entry := range e.entries {
		if !entry.Priced() {
			continue
		}
		quote = quote.Add(*entry.QuoteTotal)
		secondary = secondary.Add(*entry.SecondaryTotal)
	}
	return domain.Totals{QuoteSum: quote, SecondarySum: secondary}
}

package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Holding is a tracked asset. It is exclusively owned by the registry;
// the ID is assigned by the persistence gateway on create, never locally.
type Holding struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NormalizeSymbol is the canonical form used as cache key and for
// case-insensitive uniqueness. Presentation identity is a separate concern.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValuationEntry is the derived per-symbol value state. The three pricing
// fields are nil until the first tick for the symbol arrives, and are always
// replaced together: QuoteTotal = LastUnitPrice * Quantity and
// SecondaryTotal = QuoteTotal * rate hold for every observable state.
type ValuationEntry struct {
	Symbol         string
	LastUnitPrice  *decimal.Decimal
	QuoteTotal     *decimal.Decimal
	SecondaryTotal *decimal.Decimal
}

// Priced reports whether the entry has observed at least one tick.
func (e *ValuationEntry) Priced() bool {
	return e != nil && e.LastUnitPrice != nil
}

// Totals is the aggregate portfolio value. Entries that have not observed a
// tick yet contribute zero; that is the defined policy, not an omission.
type Totals struct {
	QuoteSum     decimal.Decimal `json:"quote_sum"`
	SecondarySum decimal.Decimal `json:"secondary_sum"`
}

// Tick is a single {symbol, price} observation from the market feed.
type Tick struct {
	Symbol string
	Price  decimal.Decimal
}

package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// Gateway is the durable CRUD store for holdings and the exchange rate.
// Implementations assign holding ids; callers never invent them. All errors
// are translated into the domain taxonomy so the engine can react without
// knowing the driver.
type Gateway interface {
	List(ctx context.Context) ([]domain.Holding, error)
	Create(ctx context.Context, symbol string, quantity decimal.Decimal) (domain.Holding, error)
	RenameSymbol(ctx context.Context, id, newSymbol string) error
	SetQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	Delete(ctx context.Context, id string) error

	GetRate(ctx context.Context) (decimal.Decimal, error)
	SetRate(ctx context.Context, rate decimal.Decimal) error

	Close() error
}

// DefaultRate seeds the exchange rate when the store has never been written.
var DefaultRate = decimal.NewFromInt(85)

// Open selects a gateway implementation by driver name.
func Open(driver, dsn string) (Gateway, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLiteGateway(dsn)
	case "postgres":
		return NewPostgresGateway(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

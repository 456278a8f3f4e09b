package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// PostgresGateway is the PostgreSQL-backed gateway, for deployments that
// already run a shared database. Same contract and error translation as the
// SQLite gateway.
type PostgresGateway struct {
	db *sql.DB
}

// NewPostgresGateway connects and ensures the schema exists.
func NewPostgresGateway(dsn string) (*PostgresGateway, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS holdings (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			quantity NUMERIC NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create holdings table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS exchange_rate (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			rate NUMERIC NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange_rate table: %w", err)
	}

	return &PostgresGateway{db: db}, nil
}

func (g *PostgresGateway) List(ctx context.Context) ([]domain.Holding, error) {
	rows, err := g.db.QueryContext(ctx, "SELECT id, symbol, quantity FROM holdings ORDER BY symbol ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		var qty string
		if err := rows.Scan(&h.ID, &h.Symbol, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.Quantity, err = decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity for %s: %w", h.Symbol, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return holdings, nil
}

func (g *PostgresGateway) Create(ctx context.Context, symbol string, quantity decimal.Decimal) (domain.Holding, error) {
	h := domain.Holding{
		ID:       uuid.NewString(),
		Symbol:   domain.NormalizeSymbol(symbol),
		Quantity: quantity,
	}
	_, err := g.db.ExecContext(ctx,
		"INSERT INTO holdings (id, symbol, quantity) VALUES ($1, $2, $3)",
		h.ID, h.Symbol, h.Quantity.String(),
	)
	if err != nil {
		if isPGUniqueErr(err) {
			return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrConflict, h.Symbol)
		}
		return domain.Holding{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return h, nil
}

func (g *PostgresGateway) RenameSymbol(ctx context.Context, id, newSymbol string) error {
	res, err := g.db.ExecContext(ctx,
		"UPDATE holdings SET symbol = $1 WHERE id = $2",
		domain.NormalizeSymbol(newSymbol), id,
	)
	if err != nil {
		if isPGUniqueErr(err) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, newSymbol)
		}
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

func (g *PostgresGateway) SetQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	res, err := g.db.ExecContext(ctx,
		"UPDATE holdings SET quantity = $1 WHERE id = $2",
		quantity.String(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

func (g *PostgresGateway) Delete(ctx context.Context, id string) error {
	res, err := g.db.ExecContext(ctx, "DELETE FROM holdings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

func (g *PostgresGateway) GetRate(ctx context.Context) (decimal.Decimal, error) {
	var rate string
	err := g.db.QueryRowContext(ctx, "SELECT rate FROM exchange_rate WHERE id = 1").Scan(&rate)
	if err == sql.ErrNoRows {
		return DefaultRate, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt exchange rate: %w", err)
	}
	return d, nil
}

func (g *PostgresGateway) SetRate(ctx context.Context, rate decimal.Decimal) error {
	_, err := g.db.ExecContext(ctx,
		"INSERT INTO exchange_rate (id, rate) VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET rate = EXCLUDED.rate",
		rate.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (g *PostgresGateway) Close() error {
	return g.db.Close()
}

func isPGUniqueErr(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

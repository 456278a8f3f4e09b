package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "github.com/glebarez/go-sqlite"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// SQLiteGateway persists holdings and the exchange rate in SQLite.
// Quantities and rates are stored as decimal text, not floats, so values
// round-trip exactly.
type SQLiteGateway struct {
	db *sql.DB
}

// NewSQLiteGateway opens (and if needed creates) the store with WAL enabled.
func NewSQLiteGateway(dbPath string) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Symbols are stored normalized (uppercase), so the UNIQUE constraint
	// enforces case-insensitive uniqueness.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS holdings (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			quantity TEXT NOT NULL DEFAULT '0'
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create holdings table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS exchange_rate (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			rate TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange_rate table: %w", err)
	}

	return &SQLiteGateway{db: db}, nil
}

// List returns all persisted holdings.
func (g *SQLiteGateway) List(ctx context.Context) ([]domain.Holding, error) {
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

// Create inserts a new holding and assigns its id.
func (g *SQLiteGateway) Create(ctx context.Context, symbol string, quantity decimal.Decimal) (domain.Holding, error) {
	h := domain.Holding{
		ID:       uuid.NewString(),
		Symbol:   domain.NormalizeSymbol(symbol),
		Quantity: quantity,
	}
	_, err := g.db.ExecContext(ctx,
		"INSERT INTO holdings (id, symbol, quantity) VALUES (?, ?, ?)",
		h.ID, h.Symbol, h.Quantity.String(),
	)
	if err != nil {
		if isSQLiteUniqueErr(err) {
			return domain.Holding{}, fmt.Errorf("%w: %s", domain.ErrConflict, h.Symbol)
		}
		return domain.Holding{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return h, nil
}

// RenameSymbol updates a holding's symbol.
func (g *SQLiteGateway) RenameSymbol(ctx context.Context, id, newSymbol string) error {
	res, err := g.db.ExecContext(ctx,
		"UPDATE holdings SET symbol = ? WHERE id = ?",
		domain.NormalizeSymbol(newSymbol), id,
	)
	if err != nil {
		if isSQLiteUniqueErr(err) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, newSymbol)
		}
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

// SetQuantity updates a holding's quantity.
func (g *SQLiteGateway) SetQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	res, err := g.db.ExecContext(ctx,
		"UPDATE holdings SET quantity = ? WHERE id = ?",
		quantity.String(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

// Delete removes a holding.
func (g *SQLiteGateway) Delete(ctx context.Context, id string) error {
	res, err := g.db.ExecContext(ctx, "DELETE FROM holdings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return requireRow(res, id)
}

// GetRate returns the persisted exchange rate, or DefaultRate if none was
// ever written.
func (g *SQLiteGateway) GetRate(ctx context.Context) (decimal.Decimal, error) {
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

// SetRate upserts the single exchange rate row.
func (g *SQLiteGateway) SetRate(ctx context.Context, rate decimal.Decimal) error {
	_, err := g.db.ExecContext(ctx,
		"INSERT INTO exchange_rate (id, rate) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET rate=excluded.rate",
		rate.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func isSQLiteUniqueErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

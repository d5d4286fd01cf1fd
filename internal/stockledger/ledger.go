// Package stockledger is the engine's only view of the shared catalog
// table. The table is mutated concurrently by an external sync job, so
// callers must re-read at every decision point and never cache stock.
package stockledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
)

var (
	ErrUnknownSKU        = errors.New("unknown sku")
	ErrInactiveSKU       = errors.New("sku is not active")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a reservation the current stock cannot
// cover. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	SKU       string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: sku %s has %d, requested %d", e.SKU, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type Ledger interface {
	// FindBySKU looks a SKU up for ordering. It fails with
	// ErrUnknownSKU or ErrInactiveSKU rather than returning a line
	// nobody may order.
	FindBySKU(ctx context.Context, sku string) (*entities.CatalogItem, error)
	// Reserve re-reads the row and confirms it covers qty at this
	// moment. Nothing is held: stock only moves at dispatch, via
	// Deduct's conditional update. A zero-stock row passes so the
	// caller can take the line as out of stock instead.
	Reserve(ctx context.Context, sku string, qty int64) (*entities.CatalogItem, error)
	// Deduct atomically subtracts qty from the SKU's stock, failing with
	// ErrInsufficientStock instead of driving the count negative.
	Deduct(ctx context.Context, sku string, qty int64) error
}

type PostgresLedger struct {
	storage *pgxpool.Pool
}

func NewPostgresLedger(storage *pgxpool.Pool) Ledger {
	return &PostgresLedger{storage: storage}
}

func (l *PostgresLedger) FindBySKU(ctx context.Context, sku string) (*entities.CatalogItem, error) {
	query := `
		SELECT id, sku, name, stock, unit_price, is_active, updated_at
		FROM catalog_items
		WHERE sku = $1`

	var item entities.CatalogItem
	err := l.storage.QueryRow(ctx, query, sku).Scan(
		&item.ID, &item.SKU, &item.Name, &item.Stock, &item.UnitPrice, &item.IsActive, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSKU, sku)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up sku %q: %w", sku, err)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrInactiveSKU, sku)
	}
	return &item, nil
}

func (l *PostgresLedger) Reserve(ctx context.Context, sku string, qty int64) (*entities.CatalogItem, error) {
	item, err := l.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item.Stock > 0 && item.Stock < qty {
		return nil, &InsufficientStockError{SKU: sku, Requested: qty, Available: item.Stock}
	}
	return item, nil
}

// Deduct relies on the conditional UPDATE as the concurrency guard: two
// racing deductions serialize on the row and the loser sees no row match
// once the stock would go negative.
func (l *PostgresLedger) Deduct(ctx context.Context, sku string, qty int64) error {
	query := `
		UPDATE catalog_items
		SET stock = stock - $2, updated_at = NOW()
		WHERE sku = $1 AND stock >= $2`

	result, err := l.storage.Exec(ctx, query, sku, qty)
	if err != nil {
		return fmt.Errorf("failed to deduct stock for %q: %w", sku, err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := l.storage.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM catalog_items WHERE sku = $1)`, sku).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sku %q: %w", sku, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSKU, sku)
	}
	return fmt.Errorf("%w: %s", ErrInsufficientStock, sku)
}

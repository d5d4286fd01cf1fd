package stockledger_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/stockledger"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/database/postgresql"
)

type ledgerHarness struct {
	pool   *pgxpool.Pool
	ledger stockledger.Ledger
	sfx    string
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run ledger integration tests")
	}
	require.NoError(t, postgresql.RunMigrations(dsn))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
	t.Cleanup(pool.Close)

	return &ledgerHarness{
		pool:   pool,
		ledger: stockledger.NewPostgresLedger(pool),
		sfx:    fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (h *ledgerHarness) seedItem(t *testing.T, name string, stock, price int64, active bool) string {
	t.Helper()
	sku := fmt.Sprintf("IT-%s-%s", name, h.sfx)
	_, err := h.pool.Exec(context.Background(),
		`INSERT INTO catalog_items (sku, name, stock, unit_price, is_active)
		 VALUES ($1, $2, $3, $4, $5)`, sku, name, stock, price, active)
	require.NoError(t, err)
	return sku
}

func (h *ledgerHarness) stock(t *testing.T, sku string) int64 {
	t.Helper()
	var stock int64
	err := h.pool.QueryRow(context.Background(),
		`SELECT stock FROM catalog_items WHERE sku = $1`, sku).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestPostgresLedgerLookupAndReserve(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()

	paper := h.seedItem(t, "PAPER", 10, 6500, true)
	toner := h.seedItem(t, "TONER", 0, 52000, true)
	lamp := h.seedItem(t, "LAMP", 5, 9000, false)

	t.Run("find", func(t *testing.T) {
		item, err := h.ledger.FindBySKU(ctx, paper)
		require.NoError(t, err)
		assert.Equal(t, paper, item.SKU)
		assert.Equal(t, int64(10), item.Stock)
		assert.Equal(t, int64(6500), item.UnitPrice)

		_, err = h.ledger.FindBySKU(ctx, "IT-MISSING-"+h.sfx)
		assert.ErrorIs(t, err, stockledger.ErrUnknownSKU)

		_, err = h.ledger.FindBySKU(ctx, lamp)
		assert.ErrorIs(t, err, stockledger.ErrInactiveSKU)
	})

	t.Run("reserve covered", func(t *testing.T) {
		item, err := h.ledger.Reserve(ctx, paper, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), item.Stock)
	})

	t.Run("reserve shortfall", func(t *testing.T) {
		_, err := h.ledger.Reserve(ctx, paper, 11)
		assert.ErrorIs(t, err, stockledger.ErrInsufficientStock)

		var short *stockledger.InsufficientStockError
		require.ErrorAs(t, err, &short)
		assert.Equal(t, int64(11), short.Requested)
		assert.Equal(t, int64(10), short.Available)
	})

	t.Run("reserve on a stockout row", func(t *testing.T) {
		item, err := h.ledger.Reserve(ctx, toner, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(0), item.Stock)
	})
}

func TestPostgresLedgerDeduct(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()

	pen := h.seedItem(t, "PEN", 10, 150, true)

	require.NoError(t, h.ledger.Deduct(ctx, pen, 4))
	assert.Equal(t, int64(6), h.stock(t, pen))

	err := h.ledger.Deduct(ctx, pen, 7)
	assert.ErrorIs(t, err, stockledger.ErrInsufficientStock)
	assert.Equal(t, int64(6), h.stock(t, pen), "a refused deduction must not move the count")

	err = h.ledger.Deduct(ctx, "IT-MISSING-"+h.sfx, 1)
	assert.ErrorIs(t, err, stockledger.ErrUnknownSKU)
}

// Two racing deductions that together overshoot the stock must resolve
// to one winner; the conditional update is the only guard.
func TestPostgresLedgerDeductRace(t *testing.T) {
	h := newLedgerHarness(t)
	ctx := context.Background()

	pen := h.seedItem(t, "PEN", 6, 150, true)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.ledger.Deduct(ctx, pen, 4)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, stockledger.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, int64(2), h.stock(t, pen))
}

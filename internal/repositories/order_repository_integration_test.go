package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/database/postgresql"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

// These tests run against a real database and skip without one. The
// suffix keeps seeded rows from colliding with earlier runs, since the
// schema is migrated once and never wiped.
type repoHarness struct {
	pool   *pgxpool.Pool
	tx     repositories.TxManagerInterface
	orders repositories.OrderRepositoryInterface
	sfx    string
	seq    int
}

func newRepoHarness(t *testing.T) *repoHarness {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run repository integration tests")
	}
	require.NoError(t, postgresql.RunMigrations(dsn))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
	t.Cleanup(pool.Close)

	return &repoHarness{
		pool:   pool,
		tx:     repositories.NewTxManager(pool),
		orders: repositories.NewOrderRepository(pool, zap.NewNop()),
		sfx:    fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (h *repoHarness) seedBranch(t *testing.T, name string) uint64 {
	t.Helper()
	var id uint64
	err := h.pool.QueryRow(context.Background(),
		`INSERT INTO branches (name, code) VALUES ($1, $2) RETURNING id`,
		name, fmt.Sprintf("IT-%s-%s", name[:2], h.sfx)).Scan(&id)
	require.NoError(t, err)
	return id
}

func (h *repoHarness) seedUser(t *testing.T, fullName, role string, branchID uint64) uint64 {
	t.Helper()
	var id uint64
	err := h.pool.QueryRow(context.Background(),
		`INSERT INTO users (full_name, email, password_hash, role, branch_id)
		 VALUES ($1, $2, 'x', $3, $4) RETURNING id`,
		fullName, fmt.Sprintf("%s-%d-%s@it.test", role, branchID, h.sfx), role, branchID).Scan(&id)
	require.NoError(t, err)
	return id
}

func (h *repoHarness) orderNumber() string {
	h.seq++
	return fmt.Sprintf("IT-%s-%d", h.sfx, h.seq)
}

func (h *repoHarness) createOrder(t *testing.T, order *entities.Order) uint64 {
	t.Helper()
	var id uint64
	err := h.tx.RunInTransaction(context.Background(), func(tx pgx.Tx) error {
		var txErr error
		id, txErr = h.orders.CreateOrderInTx(context.Background(), tx, order)
		return txErr
	})
	require.NoError(t, err)
	return id
}

func (h *repoHarness) twoLineOrder(branchID, requesterID uint64) *entities.Order {
	return &entities.Order{
		OrderNumber: h.orderNumber(),
		Status:      lifecycle.StatusUnderReview,
		Remarks:     utils.ToPtr("integration fixture"),
		BranchID:    branchID,
		RequesterID: requesterID,
		TotalItems:  12,
		TotalValue:  10 * 6500,
		RequestedAt: time.Now().UTC(),
		Items: []entities.OrderItem{
			{SKU: "PAPER-A4-80", ItemName: "A4 paper 80g", QtyRequested: 10,
				UnitPrice: utils.ToPtr(int64(6500)), TotalPrice: utils.ToPtr(int64(65000))},
			{SKU: "TONER-HP85A", ItemName: "Toner HP 85A", QtyRequested: 2, OutOfStock: true},
		},
	}
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	h := newRepoHarness(t)
	ctx := context.Background()

	branchID := h.seedBranch(t, "Riverside")
	requesterID := h.seedUser(t, "Rano Qosimova", constants.RoleBranchUser, branchID)
	managerID := h.seedUser(t, "Karim Saidov", constants.RoleManager, branchID)

	seed := h.twoLineOrder(branchID, requesterID)
	id := h.createOrder(t, seed)

	t.Run("aggregate load", func(t *testing.T) {
		order, err := h.orders.FindOrder(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, seed.OrderNumber, order.OrderNumber)
		assert.Equal(t, lifecycle.StatusUnderReview, order.Status)
		require.NotNil(t, order.Remarks)
		assert.Equal(t, "integration fixture", *order.Remarks)
		assert.WithinDuration(t, seed.RequestedAt, order.RequestedAt, time.Second)
		assert.Nil(t, order.ManagerID)
		assert.Empty(t, order.TransitMedia)

		require.NotNil(t, order.Branch)
		assert.Equal(t, "Riverside", order.Branch.Name)
		require.NotNil(t, order.Requester)
		assert.Equal(t, "Rano Qosimova", order.Requester.FullName)
		assert.Equal(t, constants.RoleBranchUser, order.Requester.Role)
		assert.Nil(t, order.Manager)

		require.Len(t, order.Items, 2)
		paper, toner := order.Items[0], order.Items[1]
		assert.Equal(t, "PAPER-A4-80", paper.SKU)
		require.NotNil(t, paper.UnitPrice)
		assert.Equal(t, int64(6500), *paper.UnitPrice)
		assert.Nil(t, paper.QtyApproved)
		assert.True(t, toner.OutOfStock)
		assert.Nil(t, toner.UnitPrice)
	})

	t.Run("patch and ruling in one transaction", func(t *testing.T) {
		now := time.Now().UTC()
		err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			order, txErr := h.orders.FindOrderForUpdateInTx(ctx, tx, id)
			if txErr != nil {
				return txErr
			}
			if order.Status != lifecycle.StatusUnderReview {
				return fmt.Errorf("unexpected status %s", order.Status)
			}

			paper := order.Items[0]
			paper.QtyApproved = utils.ToPtr(int64(8))
			paper.TotalPrice = utils.ToPtr(int64(8 * 6500))
			if txErr := h.orders.UpdateItemApprovalInTx(ctx, tx, id, paper); txErr != nil {
				return txErr
			}

			target := lifecycle.StatusConfirmPending
			return h.orders.UpdateOrderInTx(ctx, tx, id, repositories.OrderPatch{
				Status:     &target,
				ManagerID:  &managerID,
				ApprovedAt: &now,
				TotalValue: utils.ToPtr(int64(8 * 6500)),
			})
		})
		require.NoError(t, err)

		order, err := h.orders.FindOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.StatusConfirmPending, order.Status)
		require.NotNil(t, order.ManagerID)
		assert.Equal(t, managerID, *order.ManagerID)
		require.NotNil(t, order.Manager)
		assert.Equal(t, "Karim Saidov", order.Manager.FullName)
		assert.NotNil(t, order.ApprovedAt)
		assert.Equal(t, int64(8*6500), order.TotalValue)

		paper := order.Items[0]
		require.NotNil(t, paper.QtyApproved)
		assert.Equal(t, int64(8), *paper.QtyApproved)
	})

	t.Run("received quantities default to the ruling", func(t *testing.T) {
		err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.SetReceivedQuantitiesInTx(ctx, tx, id, map[string]int64{"PAPER-A4-80": 7})
		})
		require.NoError(t, err)

		order, err := h.orders.FindOrder(ctx, id)
		require.NoError(t, err)
		paper, toner := order.Items[0], order.Items[1]
		require.NotNil(t, paper.QtyReceived)
		assert.Equal(t, int64(7), *paper.QtyReceived)
		// The unnamed line falls back to qty_requested since it was never ruled on.
		require.NotNil(t, toner.QtyReceived)
		assert.Equal(t, int64(2), *toner.QtyReceived)
	})

	t.Run("received quantity for a foreign sku", func(t *testing.T) {
		err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.SetReceivedQuantitiesInTx(ctx, tx, id, map[string]int64{"STAPLER-STD": 1})
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("media append", func(t *testing.T) {
		err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.AppendMediaInTx(ctx, tx, id, "transit_media", []string{"uploads/transit/a.jpg"})
		})
		require.NoError(t, err)
		err = h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.AppendMediaInTx(ctx, tx, id, "transit_media", []string{"uploads/transit/b.jpg"})
		})
		require.NoError(t, err)

		order, err := h.orders.FindOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"uploads/transit/a.jpg", "uploads/transit/b.jpg"}, order.TransitMedia)

		err = h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.AppendMediaInTx(ctx, tx, id, "remarks", []string{"nope"})
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown media column")
	})

	t.Run("auto-close scan", func(t *testing.T) {
		received := lifecycle.StatusConfirmOrderReceived
		past := time.Now().Add(-time.Hour)
		err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.UpdateOrderInTx(ctx, tx, id, repositories.OrderPatch{
				Status:      &received,
				AutoCloseAt: &past,
			})
		})
		require.NoError(t, err)

		due, err := h.orders.FindDueForAutoClose(ctx, time.Now(), 100)
		require.NoError(t, err)
		assert.Contains(t, due, id)

		// Pushing the deadline out takes the order off the scan.
		future := time.Now().Add(time.Hour)
		err = h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.UpdateOrderInTx(ctx, tx, id, repositories.OrderPatch{AutoCloseAt: &future})
		})
		require.NoError(t, err)

		due, err = h.orders.FindDueForAutoClose(ctx, time.Now(), 100)
		require.NoError(t, err)
		assert.NotContains(t, due, id)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := h.orders.FindOrder(ctx, uint64(1)<<62)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		target := lifecycle.StatusClosedOrder
		err = h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return h.orders.UpdateOrderInTx(ctx, tx, uint64(1)<<62, repositories.OrderPatch{Status: &target})
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestOrderRepositoryListScoping(t *testing.T) {
	h := newRepoHarness(t)
	ctx := context.Background()

	riverside := h.seedBranch(t, "Riverside")
	hillside := h.seedBranch(t, "Hillside")
	rano := h.seedUser(t, "Rano Qosimova", constants.RoleBranchUser, riverside)
	dilshod := h.seedUser(t, "Dilshod Rahimov", constants.RoleBranchUser, hillside)

	first := h.createOrder(t, h.twoLineOrder(riverside, rano))
	second := h.createOrder(t, h.twoLineOrder(riverside, rano))
	h.createOrder(t, h.twoLineOrder(hillside, dilshod))

	t.Run("branch scope", func(t *testing.T) {
		orders, total, err := h.orders.GetOrders(ctx, types.Filter{}, repositories.OrderScope{BranchID: &riverside})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		require.Len(t, orders, 2)
		// Default ordering is newest first.
		assert.Equal(t, second, orders[0].ID)
		assert.Equal(t, first, orders[1].ID)
		require.NotNil(t, orders[0].Requester)
		assert.Equal(t, "Rano Qosimova", orders[0].Requester.FullName)
	})

	t.Run("requester scope", func(t *testing.T) {
		_, total, err := h.orders.GetOrders(ctx, types.Filter{}, repositories.OrderScope{RequesterID: &dilshod})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
	})

	t.Run("search by order number", func(t *testing.T) {
		target, err := h.orders.FindOrder(ctx, first)
		require.NoError(t, err)

		orders, total, err := h.orders.GetOrders(ctx,
			types.Filter{Search: target.OrderNumber}, repositories.OrderScope{})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, first, orders[0].ID)
	})

	t.Run("status filter with ascending sort", func(t *testing.T) {
		orders, total, err := h.orders.GetOrders(ctx, types.Filter{
			Filter: map[string]interface{}{"status": string(lifecycle.StatusUnderReview)},
			Sort:   map[string]string{"id": "asc"},
		}, repositories.OrderScope{BranchID: &riverside})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		require.Len(t, orders, 2)
		assert.Equal(t, first, orders[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		orders, total, err := h.orders.GetOrders(ctx, types.Filter{
			Limit:          1,
			WithPagination: true,
		}, repositories.OrderScope{BranchID: &riverside})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		assert.Len(t, orders, 1)
	})
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	h := newRepoHarness(t)
	ctx := context.Background()

	branchID := h.seedBranch(t, "Riverside")
	requesterID := h.seedUser(t, "Rano Qosimova", constants.RoleBranchUser, branchID)

	boom := errors.New("boom")
	var id uint64
	err := h.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		id, txErr = h.orders.CreateOrderInTx(ctx, tx, h.twoLineOrder(branchID, requesterID))
		if txErr != nil {
			return txErr
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = h.orders.FindOrder(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/infrastructure/bd"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

// Filterable/sortable fields for order lists.
var orderMap = map[string]string{
	"id":           "o.id",
	"order_number": "o.order_number",
	"status":       "o.status",
	"branch_id":    "o.branch_id",
	"requester_id": "o.requester_id",
	"manager_id":   "o.manager_id",
	"requested_at": "o.requested_at",
	"created_at":   "o.created_at",
	"updated_at":   "o.updated_at",
}

// Media columns that AppendMediaInTx may touch.
var orderMediaColumns = map[string]bool{
	"arranging_media": true,
	"packaging_media": true,
	"transit_media":   true,
}

// OrderScope narrows list queries to the rows the actor may see. Nil
// fields impose no restriction.
type OrderScope struct {
	BranchID    *uint64
	RequesterID *uint64
}

// OrderPatch is a partial update of the orders row. Nil fields stay
// untouched; ClearArrangingStage nulls the stage column when an order
// leaves the arranging sub-range.
type OrderPatch struct {
	Status               *lifecycle.Status
	ArrangingStage       *lifecycle.Status
	ClearArrangingStage  bool
	ManagerID            *uint64
	Remarks              *string
	TotalItems           *int64
	TotalValue           *int64
	ApprovedAt           *time.Time
	ArrangingStartedAt   *time.Time
	ArrangingCompletedAt *time.Time
	SentForPackagingAt   *time.Time
	PackagingStartedAt   *time.Time
	PackagingCompletedAt *time.Time
	DispatchedAt         *time.Time
	ReceivedAt           *time.Time
	ClosedAt             *time.Time
	AutoCloseAt          *time.Time
	ExpectedDeliveryTime *time.Time
}

type OrderRepositoryInterface interface {
	GetOrders(ctx context.Context, filter types.Filter, scope OrderScope) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error)
	UpdateOrderInTx(ctx context.Context, tx pgx.Tx, id uint64, patch OrderPatch) error
	UpdateItemApprovalInTx(ctx context.Context, tx pgx.Tx, orderID uint64, item entities.OrderItem) error
	SetReceivedQuantitiesInTx(ctx context.Context, tx pgx.Tx, orderID uint64, received map[string]int64) error
	AppendMediaInTx(ctx context.Context, tx pgx.Tx, orderID uint64, column string, paths []string) error
	FindItems(ctx context.Context, q Querier, orderID uint64) ([]entities.OrderItem, error)
	FindDueForAutoClose(ctx context.Context, now time.Time, limit uint64) ([]uint64, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{storage: storage, logger: logger}
}

const orderColumns = `
	o.id, o.order_number, o.status, o.arranging_stage, o.remarks,
	o.branch_id, o.requester_id, o.manager_id, o.total_items, o.total_value,
	o.requested_at, o.approved_at, o.arranging_started_at, o.arranging_completed_at,
	o.sent_for_packaging_at, o.packaging_started_at, o.packaging_completed_at,
	o.dispatched_at, o.received_at, o.closed_at, o.auto_close_at, o.expected_delivery_time,
	o.arranging_media, o.packaging_media, o.transit_media,
	o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	var arrangingStage, remarks sql.NullString
	var managerID sql.NullInt64
	var approvedAt, arrStartedAt, arrCompletedAt, sentForPackagingAt sql.NullTime
	var packStartedAt, packCompletedAt, dispatchedAt, receivedAt sql.NullTime
	var closedAt, autoCloseAt, expectedDelivery sql.NullTime

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &arrangingStage, &remarks,
		&o.BranchID, &o.RequesterID, &managerID, &o.TotalItems, &o.TotalValue,
		&o.RequestedAt, &approvedAt, &arrStartedAt, &arrCompletedAt,
		&sentForPackagingAt, &packStartedAt, &packCompletedAt,
		&dispatchedAt, &receivedAt, &closedAt, &autoCloseAt, &expectedDelivery,
		&o.ArrangingMedia, &o.PackagingMedia, &o.TransitMedia,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if arrangingStage.Valid {
		stage := lifecycle.Status(arrangingStage.String)
		o.ArrangingStage = &stage
	}
	if remarks.Valid {
		o.Remarks = &remarks.String
	}
	if managerID.Valid {
		id := uint64(managerID.Int64)
		o.ManagerID = &id
	}
	setTime := func(dst **time.Time, src sql.NullTime) {
		if src.Valid {
			t := src.Time
			*dst = &t
		}
	}
	setTime(&o.ApprovedAt, approvedAt)
	setTime(&o.ArrangingStartedAt, arrStartedAt)
	setTime(&o.ArrangingCompletedAt, arrCompletedAt)
	setTime(&o.SentForPackagingAt, sentForPackagingAt)
	setTime(&o.PackagingStartedAt, packStartedAt)
	setTime(&o.PackagingCompletedAt, packCompletedAt)
	setTime(&o.DispatchedAt, dispatchedAt)
	setTime(&o.ReceivedAt, receivedAt)
	setTime(&o.ClosedAt, closedAt)
	setTime(&o.AutoCloseAt, autoCloseAt)
	setTime(&o.ExpectedDeliveryTime, expectedDelivery)

	return &o, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter types.Filter, scope OrderScope) ([]entities.Order, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyScope := func(b sq.SelectBuilder) sq.SelectBuilder {
		if scope.BranchID != nil {
			b = b.Where(sq.Eq{"o.branch_id": *scope.BranchID})
		}
		if scope.RequesterID != nil {
			b = b.Where(sq.Eq{"o.requester_id": *scope.RequesterID})
		}
		if filter.Search != "" {
			b = b.Where(sq.ILike{"o.order_number": "%" + filter.Search + "%"})
		}
		return b
	}

	countBuilder := applyScope(psql.Select("COUNT(o.id)").From("orders AS o"))

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = bd.ApplyListParams(countBuilder, countFilter, orderMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	listBuilder := applyScope(psql.Select(
		"o.id", "o.order_number", "o.status", "o.arranging_stage", "o.remarks",
		"o.branch_id", "o.requester_id", "o.manager_id", "o.total_items", "o.total_value",
		"o.requested_at", "o.approved_at", "o.arranging_started_at", "o.arranging_completed_at",
		"o.sent_for_packaging_at", "o.packaging_started_at", "o.packaging_completed_at",
		"o.dispatched_at", "o.received_at", "o.closed_at", "o.auto_close_at", "o.expected_delivery_time",
		"o.arranging_media", "o.packaging_media", "o.transit_media",
		"o.created_at", "o.updated_at",
		"COALESCE(b.name, '')", "COALESCE(b.code, '')",
		"COALESCE(req.full_name, '')", "COALESCE(req.role, '')",
		"mgr.full_name",
	).From("orders AS o").
		LeftJoin("branches b ON o.branch_id = b.id").
		LeftJoin("users req ON o.requester_id = req.id").
		LeftJoin("users mgr ON o.manager_id = mgr.id"))

	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy("o.id DESC")
	}
	listBuilder = bd.ApplyListParams(listBuilder, filter, orderMap)

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0, filter.Limit)
	for rows.Next() {
		var o entities.Order
		var arrangingStage, remarks, mgrName sql.NullString
		var managerID sql.NullInt64
		var approvedAt, arrStartedAt, arrCompletedAt, sentForPackagingAt sql.NullTime
		var packStartedAt, packCompletedAt, dispatchedAt, receivedAt sql.NullTime
		var closedAt, autoCloseAt, expectedDelivery sql.NullTime
		var branchName, branchCode, reqName, reqRole string

		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.Status, &arrangingStage, &remarks,
			&o.BranchID, &o.RequesterID, &managerID, &o.TotalItems, &o.TotalValue,
			&o.RequestedAt, &approvedAt, &arrStartedAt, &arrCompletedAt,
			&sentForPackagingAt, &packStartedAt, &packCompletedAt,
			&dispatchedAt, &receivedAt, &closedAt, &autoCloseAt, &expectedDelivery,
			&o.ArrangingMedia, &o.PackagingMedia, &o.TransitMedia,
			&o.CreatedAt, &o.UpdatedAt,
			&branchName, &branchCode,
			&reqName, &reqRole,
			&mgrName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}

		if arrangingStage.Valid {
			stage := lifecycle.Status(arrangingStage.String)
			o.ArrangingStage = &stage
		}
		if remarks.Valid {
			o.Remarks = &remarks.String
		}
		if managerID.Valid {
			id := uint64(managerID.Int64)
			o.ManagerID = &id
		}
		setTime := func(dst **time.Time, src sql.NullTime) {
			if src.Valid {
				t := src.Time
				*dst = &t
			}
		}
		setTime(&o.ApprovedAt, approvedAt)
		setTime(&o.ArrangingStartedAt, arrStartedAt)
		setTime(&o.ArrangingCompletedAt, arrCompletedAt)
		setTime(&o.SentForPackagingAt, sentForPackagingAt)
		setTime(&o.PackagingStartedAt, packStartedAt)
		setTime(&o.PackagingCompletedAt, packCompletedAt)
		setTime(&o.DispatchedAt, dispatchedAt)
		setTime(&o.ReceivedAt, receivedAt)
		setTime(&o.ClosedAt, closedAt)
		setTime(&o.AutoCloseAt, autoCloseAt)
		setTime(&o.ExpectedDeliveryTime, expectedDelivery)

		o.Branch = &entities.Branch{ID: o.BranchID, Name: branchName, Code: branchCode}
		o.Requester = &entities.User{ID: o.RequesterID, FullName: reqName, Role: reqRole}
		if managerID.Valid && mgrName.Valid {
			o.Manager = &entities.User{ID: uint64(managerID.Int64), FullName: mgrName.String}
		}

		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// FindOrder loads the full aggregate: the orders row, the joined short
// relations, the item lines and the tracking row if present.
func (r *OrderRepository) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	query := `
		SELECT` + orderColumns + `,
			COALESCE(b.name, ''), COALESCE(b.code, ''),
			COALESCE(req.full_name, ''), COALESCE(req.role, ''),
			mgr.full_name
		FROM orders o
		LEFT JOIN branches b ON o.branch_id = b.id
		LEFT JOIN users req ON o.requester_id = req.id
		LEFT JOIN users mgr ON o.manager_id = mgr.id
		WHERE o.id = $1`

	var o entities.Order
	var arrangingStage, remarks, mgrName sql.NullString
	var managerID sql.NullInt64
	var approvedAt, arrStartedAt, arrCompletedAt, sentForPackagingAt sql.NullTime
	var packStartedAt, packCompletedAt, dispatchedAt, receivedAt sql.NullTime
	var closedAt, autoCloseAt, expectedDelivery sql.NullTime
	var branchName, branchCode, reqName, reqRole string

	err := r.storage.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderNumber, &o.Status, &arrangingStage, &remarks,
		&o.BranchID, &o.RequesterID, &managerID, &o.TotalItems, &o.TotalValue,
		&o.RequestedAt, &approvedAt, &arrStartedAt, &arrCompletedAt,
		&sentForPackagingAt, &packStartedAt, &packCompletedAt,
		&dispatchedAt, &receivedAt, &closedAt, &autoCloseAt, &expectedDelivery,
		&o.ArrangingMedia, &o.PackagingMedia, &o.TransitMedia,
		&o.CreatedAt, &o.UpdatedAt,
		&branchName, &branchCode,
		&reqName, &reqRole,
		&mgrName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if arrangingStage.Valid {
		stage := lifecycle.Status(arrangingStage.String)
		o.ArrangingStage = &stage
	}
	if remarks.Valid {
		o.Remarks = &remarks.String
	}
	if managerID.Valid {
		mid := uint64(managerID.Int64)
		o.ManagerID = &mid
	}
	setTime := func(dst **time.Time, src sql.NullTime) {
		if src.Valid {
			t := src.Time
			*dst = &t
		}
	}
	setTime(&o.ApprovedAt, approvedAt)
	setTime(&o.ArrangingStartedAt, arrStartedAt)
	setTime(&o.ArrangingCompletedAt, arrCompletedAt)
	setTime(&o.SentForPackagingAt, sentForPackagingAt)
	setTime(&o.PackagingStartedAt, packStartedAt)
	setTime(&o.PackagingCompletedAt, packCompletedAt)
	setTime(&o.DispatchedAt, dispatchedAt)
	setTime(&o.ReceivedAt, receivedAt)
	setTime(&o.ClosedAt, closedAt)
	setTime(&o.AutoCloseAt, autoCloseAt)
	setTime(&o.ExpectedDeliveryTime, expectedDelivery)

	o.Branch = &entities.Branch{ID: o.BranchID, Name: branchName, Code: branchCode}
	o.Requester = &entities.User{ID: o.RequesterID, FullName: reqName, Role: reqRole}
	if managerID.Valid && mgrName.Valid {
		o.Manager = &entities.User{ID: uint64(managerID.Int64), FullName: mgrName.String}
	}

	items, err := r.FindItems(ctx, r.storage, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	tracking, err := findTracking(ctx, r.storage, id)
	if err != nil {
		return nil, err
	}
	o.Tracking = tracking

	return &o, nil
}

// FindOrderForUpdateInTx locks the orders row for the rest of the
// transaction and returns it together with its items. The status on the
// returned row is the precondition every transition checks against.
func (r *OrderRepository) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := r.FindItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error) {
	orderInsertQuery := `
		INSERT INTO orders (order_number, status, remarks, branch_id, requester_id,
			total_items, total_value, requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`

	var newID uint64
	err := tx.QueryRow(ctx, orderInsertQuery,
		order.OrderNumber, order.Status, order.Remarks, order.BranchID,
		order.RequesterID, order.TotalItems, order.TotalValue, order.RequestedAt,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	itemInsertQuery := `
		INSERT INTO order_items (order_id, sku, item_name, qty_requested,
			unit_price, total_price, out_of_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemInsertQuery,
			newID, item.SKU, item.ItemName, item.QtyRequested,
			item.UnitPrice, item.TotalPrice, item.OutOfStock,
		); err != nil {
			return 0, fmt.Errorf("failed to insert order item %q: %w", item.SKU, err)
		}
	}
	return newID, nil
}

func (r *OrderRepository) UpdateOrderInTx(ctx context.Context, tx pgx.Tx, id uint64, patch OrderPatch) error {
	query := "UPDATE orders SET updated_at = NOW()"
	args := []interface{}{}
	argCounter := 1

	add := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argCounter)
		args = append(args, value)
		argCounter++
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ClearArrangingStage {
		query += ", arranging_stage = NULL"
	} else if patch.ArrangingStage != nil {
		add("arranging_stage", *patch.ArrangingStage)
	}
	if patch.ManagerID != nil {
		add("manager_id", *patch.ManagerID)
	}
	if patch.Remarks != nil {
		add("remarks", *patch.Remarks)
	}
	if patch.TotalItems != nil {
		add("total_items", *patch.TotalItems)
	}
	if patch.TotalValue != nil {
		add("total_value", *patch.TotalValue)
	}
	if patch.ApprovedAt != nil {
		add("approved_at", *patch.ApprovedAt)
	}
	if patch.ArrangingStartedAt != nil {
		add("arranging_started_at", *patch.ArrangingStartedAt)
	}
	if patch.ArrangingCompletedAt != nil {
		add("arranging_completed_at", *patch.ArrangingCompletedAt)
	}
	if patch.SentForPackagingAt != nil {
		add("sent_for_packaging_at", *patch.SentForPackagingAt)
	}
	if patch.PackagingStartedAt != nil {
		add("packaging_started_at", *patch.PackagingStartedAt)
	}
	if patch.PackagingCompletedAt != nil {
		add("packaging_completed_at", *patch.PackagingCompletedAt)
	}
	if patch.DispatchedAt != nil {
		add("dispatched_at", *patch.DispatchedAt)
	}
	if patch.ReceivedAt != nil {
		add("received_at", *patch.ReceivedAt)
	}
	if patch.ClosedAt != nil {
		add("closed_at", *patch.ClosedAt)
	}
	if patch.AutoCloseAt != nil {
		add("auto_close_at", *patch.AutoCloseAt)
	}
	if patch.ExpectedDeliveryTime != nil {
		add("expected_delivery_time", *patch.ExpectedDeliveryTime)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateItemApprovalInTx writes the manager's ruling on one line: the
// approved quantity, the out-of-stock flag and the recomputed prices.
func (r *OrderRepository) UpdateItemApprovalInTx(ctx context.Context, tx pgx.Tx, orderID uint64, item entities.OrderItem) error {
	query := `
		UPDATE order_items
		SET qty_approved = $3, out_of_stock = $4, unit_price = $5, total_price = $6, updated_at = NOW()
		WHERE order_id = $1 AND sku = $2`
	result, err := tx.Exec(ctx, query,
		orderID, item.SKU, item.QtyApproved, item.OutOfStock, item.UnitPrice, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("failed to update item %q: %w", item.SKU, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetReceivedQuantitiesInTx records the counted quantities named in the
// receipt confirmation, then defaults every remaining line to its
// effective (approved, else requested) quantity.
func (r *OrderRepository) SetReceivedQuantitiesInTx(ctx context.Context, tx pgx.Tx, orderID uint64, received map[string]int64) error {
	namedQuery := `
		UPDATE order_items SET qty_received = $3, updated_at = NOW()
		WHERE order_id = $1 AND sku = $2`
	for sku, qty := range received {
		result, err := tx.Exec(ctx, namedQuery, orderID, sku, qty)
		if err != nil {
			return fmt.Errorf("failed to set received qty for %q: %w", sku, err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
	}

	defaultQuery := `
		UPDATE order_items SET qty_received = COALESCE(qty_approved, qty_requested), updated_at = NOW()
		WHERE order_id = $1 AND qty_received IS NULL`
	if _, err := tx.Exec(ctx, defaultQuery, orderID); err != nil {
		return fmt.Errorf("failed to default received quantities: %w", err)
	}
	return nil
}

// AppendMediaInTx concatenates paths onto one of the media arrays. The
// append runs inside the transition transaction so concurrent uploads to
// the same order cannot lose updates.
func (r *OrderRepository) AppendMediaInTx(ctx context.Context, tx pgx.Tx, orderID uint64, column string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if !orderMediaColumns[column] {
		return fmt.Errorf("unknown media column %q", column)
	}
	query := fmt.Sprintf(
		"UPDATE orders SET %s = %s || $2, updated_at = NOW() WHERE id = $1", column, column)
	result, err := tx.Exec(ctx, query, orderID, paths)
	if err != nil {
		return fmt.Errorf("failed to append media: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) FindItems(ctx context.Context, q Querier, orderID uint64) ([]entities.OrderItem, error) {
	query := `
		SELECT id, order_id, sku, item_name, qty_requested, qty_approved,
			qty_received, unit_price, total_price, out_of_stock, created_at, updated_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := make([]entities.OrderItem, 0)
	for rows.Next() {
		var item entities.OrderItem
		var qtyApproved, qtyReceived, unitPrice, totalPrice sql.NullInt64

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.SKU, &item.ItemName, &item.QtyRequested,
			&qtyApproved, &qtyReceived, &unitPrice, &totalPrice, &item.OutOfStock,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		if qtyApproved.Valid {
			item.QtyApproved = &qtyApproved.Int64
		}
		if qtyReceived.Valid {
			item.QtyReceived = &qtyReceived.Int64
		}
		if unitPrice.Valid {
			item.UnitPrice = &unitPrice.Int64
		}
		if totalPrice.Valid {
			item.TotalPrice = &totalPrice.Int64
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// FindDueForAutoClose returns ids of orders whose auto-close deadline has
// passed. Each returned id is closed in its own transaction by the caller.
func (r *OrderRepository) FindDueForAutoClose(ctx context.Context, now time.Time, limit uint64) ([]uint64, error) {
	query := `
		SELECT id FROM orders
		WHERE status = $1 AND auto_close_at IS NOT NULL AND auto_close_at <= $2
		ORDER BY auto_close_at ASC
		LIMIT $3`

	rows, err := r.storage.Query(ctx, query, lifecycle.StatusConfirmOrderReceived, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due orders: %w", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan due order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

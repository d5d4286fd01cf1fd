package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
)

type TrackingRepositoryInterface interface {
	UpsertInTx(ctx context.Context, tx pgx.Tx, tracking *entities.Tracking) error
	MarkDeliveredInTx(ctx context.Context, tx pgx.Tx, orderID uint64, deliveredAt time.Time) error
	FindByOrderID(ctx context.Context, orderID uint64) (*entities.Tracking, error)
}

type TrackingRepository struct {
	storage *pgxpool.Pool
}

func NewTrackingRepository(storage *pgxpool.Pool) TrackingRepositoryInterface {
	return &TrackingRepository{storage: storage}
}

// UpsertInTx writes the courier details at dispatch. One row per order;
// a re-dispatch overwrites the previous details.
func (r *TrackingRepository) UpsertInTx(ctx context.Context, tx pgx.Tx, tracking *entities.Tracking) error {
	query := `
		INSERT INTO order_tracking (order_id, tracking_id, courier_link, expected_delivery_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (order_id) DO UPDATE
		SET tracking_id = EXCLUDED.tracking_id,
		    courier_link = EXCLUDED.courier_link,
		    expected_delivery_time = EXCLUDED.expected_delivery_time,
		    updated_at = NOW()`
	_, err := tx.Exec(ctx, query,
		tracking.OrderID, tracking.TrackingID, tracking.CourierLink, tracking.ExpectedDeliveryTime)
	if err != nil {
		return fmt.Errorf("failed to upsert tracking: %w", err)
	}
	return nil
}

func (r *TrackingRepository) MarkDeliveredInTx(ctx context.Context, tx pgx.Tx, orderID uint64, deliveredAt time.Time) error {
	query := `UPDATE order_tracking SET delivered_at = $2, updated_at = NOW() WHERE order_id = $1`
	if _, err := tx.Exec(ctx, query, orderID, deliveredAt); err != nil {
		return fmt.Errorf("failed to mark tracking delivered: %w", err)
	}
	return nil
}

func (r *TrackingRepository) FindByOrderID(ctx context.Context, orderID uint64) (*entities.Tracking, error) {
	return findTracking(ctx, r.storage, orderID)
}

// findTracking returns nil without error when the order has no tracking
// row yet.
func findTracking(ctx context.Context, q Querier, orderID uint64) (*entities.Tracking, error) {
	query := `
		SELECT id, order_id, tracking_id, courier_link, expected_delivery_time, delivered_at, created_at, updated_at
		FROM order_tracking
		WHERE order_id = $1`

	var t entities.Tracking
	var trackingID, courierLink sql.NullString
	var expectedDelivery, deliveredAt sql.NullTime

	err := q.QueryRow(ctx, query, orderID).Scan(
		&t.ID, &t.OrderID, &trackingID, &courierLink,
		&expectedDelivery, &deliveredAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracking: %w", err)
	}

	if trackingID.Valid {
		t.TrackingID = &trackingID.String
	}
	if courierLink.Valid {
		t.CourierLink = &courierLink.String
	}
	if expectedDelivery.Valid {
		t.ExpectedDeliveryTime = &expectedDelivery.Time
	}
	if deliveredAt.Valid {
		t.DeliveredAt = &deliveredAt.Time
	}
	return &t, nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

type NotificationRepositoryInterface interface {
	CreateBatch(ctx context.Context, notifications []entities.Notification) error
	GetByUserID(ctx context.Context, userID uint64, filter types.Filter) ([]entities.Notification, uint64, uint64, error)
	MarkRead(ctx context.Context, userID uint64, id uint64) error
}

type NotificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage}
}

// CreateBatch writes one row per recipient. Called by the fan-out
// listener after the transition committed, so a failure here is logged
// by the caller and never surfaced to the client.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []entities.Notification) error {
	query := `
		INSERT INTO notifications (user_id, order_id, event_type, title, body)
		VALUES ($1, $2, $3, $4, $5)`
	for _, n := range notifications {
		if _, err := r.storage.Exec(ctx, query, n.UserID, n.OrderID, n.EventType, n.Title, n.Body); err != nil {
			return fmt.Errorf("failed to insert notification for user %d: %w", n.UserID, err)
		}
	}
	return nil
}

// GetByUserID returns the recipient's notifications newest first, plus
// the total and unread counters.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uint64, filter types.Filter) ([]entities.Notification, uint64, uint64, error) {
	var total, unread uint64
	countQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications
		WHERE user_id = $1`
	if err := r.storage.QueryRow(ctx, countQuery, userID).Scan(&total, &unread); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	if total == 0 {
		return []entities.Notification{}, 0, 0, nil
	}

	query := `
		SELECT id, user_id, order_id, event_type, title, body, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.storage.Query(ctx, query, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]entities.Notification, 0, filter.Limit)
	for rows.Next() {
		var n entities.Notification
		var orderID sql.NullInt64

		err := rows.Scan(&n.ID, &n.UserID, &orderID, &n.EventType, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to scan notification: %w", err)
		}

		if orderID.Valid {
			id := uint64(orderID.Int64)
			n.OrderID = &id
		}
		notifications = append(notifications, n)
	}
	return notifications, total, unread, rows.Err()
}

// MarkRead is scoped by recipient so one user cannot mark another's rows.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uint64, id uint64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.storage.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
)

// OrderHistoryItem carries one audit row enriched with the actor's name.
type OrderHistoryItem struct {
	entities.OrderHistory
	ActorName sql.NullString `db:"actor_name"`
	ActorRole sql.NullString `db:"actor_role"`
}

type OrderHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.OrderHistory) error
	FindByOrderID(ctx context.Context, orderID uint64) ([]OrderHistoryItem, error)
}

type OrderHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewOrderHistoryRepository(storage *pgxpool.Pool) OrderHistoryRepositoryInterface {
	return &OrderHistoryRepository{storage: storage}
}

func (r *OrderHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.OrderHistory) error {
	query := `
		INSERT INTO order_history (order_id, user_id, event_type, old_value, new_value, comment, tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.Exec(ctx, query,
		history.OrderID, history.UserID, history.EventType,
		history.OldValue, history.NewValue, history.Comment, history.TxID)
	if err != nil {
		return fmt.Errorf("failed to insert history row: %w", err)
	}
	return nil
}

func (r *OrderHistoryRepository) FindByOrderID(ctx context.Context, orderID uint64) ([]OrderHistoryItem, error) {
	query := `
		SELECT
			h.id, h.order_id, h.user_id, h.event_type, h.old_value, h.new_value,
			h.comment, h.tx_id, h.created_at,
			u.full_name AS actor_name,
			u.role AS actor_role
		FROM order_history h
		LEFT JOIN users u ON h.user_id = u.id
		WHERE h.order_id = $1
		ORDER BY h.created_at ASC, h.id ASC`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	defer rows.Close()

	var history []OrderHistoryItem
	for rows.Next() {
		var h OrderHistoryItem
		var userID sql.NullInt64
		var oldValue, newValue, comment sql.NullString

		err := rows.Scan(
			&h.ID, &h.OrderID, &userID, &h.EventType, &oldValue, &newValue,
			&comment, &h.TxID, &h.CreatedAt,
			&h.ActorName, &h.ActorRole,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if userID.Valid {
			id := uint64(userID.Int64)
			h.UserID = &id
		}
		if oldValue.Valid {
			h.OldValue = &oldValue.String
		}
		if newValue.Valid {
			h.NewValue = &newValue.String
		}
		if comment.Valid {
			h.Comment = &comment.String
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
)

// IssueConversationItem carries one conversation row enriched with the
// replier's name for rendering.
type IssueConversationItem struct {
	entities.OrderIssue
	ReplierName sql.NullString `db:"replier_name"`
}

// ReceivedIssueItem is a received-goods complaint with the reporter
// resolved for rendering.
type ReceivedIssueItem struct {
	entities.ReceivedIssue
	ReporterName sql.NullString `db:"reporter_name"`
	ReporterRole sql.NullString `db:"reporter_role"`
}

type IssueRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, issue *entities.OrderIssue) error
	FindByOrderID(ctx context.Context, orderID uint64) ([]IssueConversationItem, error)
	CreateReceivedInTx(ctx context.Context, tx pgx.Tx, issue *entities.ReceivedIssue) (uint64, error)
	FindReceivedByOrderID(ctx context.Context, orderID uint64) ([]ReceivedIssueItem, error)
}

type IssueRepository struct {
	storage *pgxpool.Pool
}

func NewIssueRepository(storage *pgxpool.Pool) IssueRepositoryInterface {
	return &IssueRepository{storage: storage}
}

func (r *IssueRepository) CreateInTx(ctx context.Context, tx pgx.Tx, issue *entities.OrderIssue) error {
	query := `
		INSERT INTO order_issues (order_id, item_id, message, sender_role, replied_by, replied_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.Exec(ctx, query,
		issue.OrderID, issue.ItemID, issue.Message, issue.SenderRole,
		issue.RepliedBy, issue.RepliedAt)
	if err != nil {
		return fmt.Errorf("failed to insert issue row: %w", err)
	}
	return nil
}

// FindByOrderID returns the whole conversation ordered by creation, the
// order rows were appended in.
func (r *IssueRepository) FindByOrderID(ctx context.Context, orderID uint64) ([]IssueConversationItem, error) {
	query := `
		SELECT
			i.id, i.order_id, i.item_id, i.message, i.sender_role,
			i.replied_by, i.replied_at, i.created_at,
			u.full_name AS replier_name
		FROM order_issues i
		LEFT JOIN users u ON i.replied_by = u.id
		WHERE i.order_id = $1
		ORDER BY i.created_at ASC, i.id ASC`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issue conversation: %w", err)
	}
	defer rows.Close()

	var conversation []IssueConversationItem
	for rows.Next() {
		var item IssueConversationItem
		var itemID, repliedBy sql.NullInt64
		var repliedAt sql.NullTime

		err := rows.Scan(
			&item.ID, &item.OrderID, &itemID, &item.Message, &item.SenderRole,
			&repliedBy, &repliedAt, &item.CreatedAt,
			&item.ReplierName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}

		if itemID.Valid {
			id := uint64(itemID.Int64)
			item.ItemID = &id
		}
		if repliedBy.Valid {
			id := uint64(repliedBy.Int64)
			item.RepliedBy = &id
		}
		if repliedAt.Valid {
			item.RepliedAt = &repliedAt.Time
		}
		conversation = append(conversation, item)
	}
	return conversation, rows.Err()
}

func (r *IssueRepository) CreateReceivedInTx(ctx context.Context, tx pgx.Tx, issue *entities.ReceivedIssue) (uint64, error) {
	query := `
		INSERT INTO received_issues (order_id, item_id, reason, media, reported_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var newID uint64
	err := tx.QueryRow(ctx, query,
		issue.OrderID, issue.ItemID, issue.Reason, issue.Media, issue.ReportedBy,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert received issue: %w", err)
	}
	return newID, nil
}

func (r *IssueRepository) FindReceivedByOrderID(ctx context.Context, orderID uint64) ([]ReceivedIssueItem, error) {
	query := `
		SELECT
			ri.id, ri.order_id, ri.item_id, ri.reason, ri.media,
			ri.reported_by, ri.created_at,
			u.full_name AS reporter_name, u.role AS reporter_role
		FROM received_issues ri
		LEFT JOIN users u ON ri.reported_by = u.id
		WHERE ri.order_id = $1
		ORDER BY ri.created_at ASC, ri.id ASC`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load received issues: %w", err)
	}
	defer rows.Close()

	var issues []ReceivedIssueItem
	for rows.Next() {
		var issue ReceivedIssueItem
		err := rows.Scan(
			&issue.ID, &issue.OrderID, &issue.ItemID, &issue.Reason, &issue.Media,
			&issue.ReportedBy, &issue.CreatedAt,
			&issue.ReporterName, &issue.ReporterRole,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan received issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

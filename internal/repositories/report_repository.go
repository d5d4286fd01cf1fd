package repositories

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
)

type ReportRepositoryInterface interface {
	GetOrderRegister(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportRow, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
}

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &ReportRepository{storage: storage}
}

// GetOrderRegister flattens orders into export rows, newest first.
func (r *ReportRepository) GetOrderRegister(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportRow, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	builder := psql.Select(
		"o.order_number",
		"COALESCE(b.name, '')",
		"COALESCE(u.full_name, '')",
		"o.status",
		"o.total_items",
		"o.total_value",
		"o.requested_at",
		"o.approved_at",
		"o.dispatched_at",
		"o.received_at",
		"o.closed_at",
	).From("orders AS o").
		LeftJoin("branches b ON o.branch_id = b.id").
		LeftJoin("users u ON o.requester_id = u.id").
		OrderBy("o.requested_at DESC", "o.id DESC")

	if filter.BranchID != 0 {
		builder = builder.Where(sq.Eq{"o.branch_id": filter.BranchID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"o.status": filter.Status})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"o.requested_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"o.requested_at": *filter.DateTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order register: %w", err)
	}
	defer rows.Close()

	report := make([]entities.ReportRow, 0)
	for rows.Next() {
		var row entities.ReportRow
		var approvedAt, dispatchedAt, receivedAt, closedAt sql.NullTime

		err := rows.Scan(
			&row.OrderNumber, &row.BranchName, &row.RequesterName, &row.Status,
			&row.TotalItems, &row.TotalValue, &row.RequestedAt,
			&approvedAt, &dispatchedAt, &receivedAt, &closedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}

		if approvedAt.Valid {
			row.ApprovedAt = &approvedAt.Time
		}
		if dispatchedAt.Valid {
			row.DispatchedAt = &dispatchedAt.Time
		}
		if receivedAt.Valid {
			row.ReceivedAt = &receivedAt.Time
		}
		if closedAt.Valid {
			row.ClosedAt = &closedAt.Time
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

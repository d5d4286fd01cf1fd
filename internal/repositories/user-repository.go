package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
)

// UserRepositoryInterface is the read-only directory the engine needs
// for role gates and notification fan-out. Accounts are seeded, not
// CRUD-managed here.
type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUsersByIDs(ctx context.Context, ids []uint64) ([]entities.User, error)
	FindIDsByRole(ctx context.Context, roles ...string) ([]uint64, error)
	FindIDsByBranchRole(ctx context.Context, branchID uint64, roles ...string) ([]uint64, error)
	FindActiveIDs(ctx context.Context) ([]uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var branchID sql.NullInt64

	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &branchID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if branchID.Valid {
		id := uint64(branchID.Int64)
		u.BranchID = &id
	}
	return &u, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := `
		SELECT id, full_name, email, role, branch_id, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUsersByIDs(ctx context.Context, ids []uint64) ([]entities.User, error) {
	if len(ids) == 0 {
		return []entities.User{}, nil
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(
		"id", "full_name", "email", "role", "branch_id", "is_active", "created_at", "updated_at",
	).From("users").Where(sq.Eq{"id": ids}).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) FindIDsByRole(ctx context.Context, roles ...string) ([]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("id").From("users").
		Where(sq.Eq{"role": roles, "is_active": true}).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryIDs(ctx, query, args...)
}

func (r *UserRepository) FindIDsByBranchRole(ctx context.Context, branchID uint64, roles ...string) ([]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("id").From("users").
		Where(sq.Eq{"branch_id": branchID, "role": roles, "is_active": true}).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryIDs(ctx, query, args...)
}

func (r *UserRepository) FindActiveIDs(ctx context.Context) ([]uint64, error) {
	return r.queryIDs(ctx, `SELECT id FROM users WHERE is_active`)
}

func (r *UserRepository) queryIDs(ctx context.Context, query string, args ...any) ([]uint64, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
)

type BranchRepositoryInterface interface {
	FindBranch(ctx context.Context, id uint64) (*entities.Branch, error)
}

type BranchRepository struct {
	storage *pgxpool.Pool
}

func NewBranchRepository(storage *pgxpool.Pool) BranchRepositoryInterface {
	return &BranchRepository{storage: storage}
}

func (r *BranchRepository) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	query := `SELECT id, name, code, is_active, created_at, updated_at FROM branches WHERE id = $1`

	var b entities.Branch
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Code, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan branch: %w", err)
	}
	return &b, nil
}

// Package seeders loads the development fixtures: branches, one user per
// role and a small catalog. Every seeder is idempotent, so reruns update
// rows in place instead of duplicating them.
package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

func Run(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("seeding branches...")
	if err := seedBranches(ctx, db); err != nil {
		return err
	}
	log.Println("seeding users...")
	if err := seedUsers(ctx, db); err != nil {
		return err
	}
	log.Println("seeding catalog...")
	if err := seedCatalog(ctx, db); err != nil {
		return err
	}
	return nil
}

func seedBranches(ctx context.Context, db *pgxpool.Pool) error {
	for _, b := range branchesData {
		_, err := db.Exec(ctx, `
			INSERT INTO branches (name, code, is_active)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE
			SET name = EXCLUDED.name, is_active = EXCLUDED.is_active, updated_at = NOW()`,
			b.Name, b.Code, b.IsActive)
		if err != nil {
			return fmt.Errorf("failed to seed branch %s: %w", b.Code, err)
		}
	}
	return nil
}

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	hash, err := utils.HashPassword(devPassword)
	if err != nil {
		return fmt.Errorf("failed to hash the dev password: %w", err)
	}

	for _, u := range usersData {
		var branchID *uint64
		if u.BranchCode != "" {
			var id uint64
			if err := db.QueryRow(ctx, `SELECT id FROM branches WHERE code = $1`, u.BranchCode).Scan(&id); err != nil {
				return fmt.Errorf("branch %s for user %s: %w", u.BranchCode, u.Email, err)
			}
			branchID = &id
		}

		_, err := db.Exec(ctx, `
			INSERT INTO users (full_name, email, password_hash, role, branch_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE
			SET full_name = EXCLUDED.full_name, role = EXCLUDED.role,
			    branch_id = EXCLUDED.branch_id, updated_at = NOW()`,
			u.FullName, u.Email, hash, u.Role, branchID)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, db *pgxpool.Pool) error {
	for _, item := range catalogData {
		_, err := db.Exec(ctx, `
			INSERT INTO catalog_items (sku, name, stock, unit_price, is_active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (sku) DO UPDATE
			SET name = EXCLUDED.name, stock = EXCLUDED.stock,
			    unit_price = EXCLUDED.unit_price, is_active = EXCLUDED.is_active,
			    updated_at = NOW()`,
			item.SKU, item.Name, item.Stock, item.UnitPrice, item.IsActive)
		if err != nil {
			return fmt.Errorf("failed to seed catalog item %s: %w", item.SKU, err)
		}
	}
	return nil
}

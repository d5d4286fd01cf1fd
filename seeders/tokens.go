package seeders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/config"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/service"
)

// PrintDevTokens issues an access token for every seeded user so the API
// can be exercised without a login flow.
func PrintDevTokens(ctx context.Context, db *pgxpool.Pool, cfg *config.Config) error {
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, zap.NewNop())

	rows, err := db.Query(ctx, `SELECT id, email, role, branch_id FROM users ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          uint64
			email, role string
			branchID    *uint64
		)
		if err := rows.Scan(&id, &email, &role, &branchID); err != nil {
			return err
		}
		access, _, err := jwtSvc.GenerateTokens(id, role, branchID)
		if err != nil {
			return fmt.Errorf("failed to sign a token for %s: %w", email, err)
		}
		fmt.Printf("%-30s %-12s %s\n", email, role, access)
	}
	return rows.Err()
}

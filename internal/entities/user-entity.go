package entities

import (
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

// User is an account that can hold a role in the order flow. BranchID is
// nil for roles that operate across branches (ADMIN, PACKAGER, DISPATCHER).
type User struct {
	ID           uint64  `json:"id" db:"id"`
	FullName     string  `json:"full_name" db:"full_name"`
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Role         string  `json:"role" db:"role"`
	BranchID     *uint64 `json:"branch_id,omitempty" db:"branch_id"`
	IsActive     bool    `json:"is_active" db:"is_active"`

	Branch *Branch `json:"branch,omitempty"`

	types.BaseEntity
}

package entities

import (
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

// Branch is an ordering location.
type Branch struct {
	ID       uint64 `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Code     string `json:"code" db:"code"`
	IsActive bool   `json:"is_active" db:"is_active"`

	types.BaseEntity
}

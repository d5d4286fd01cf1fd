package entities

import "time"

// CatalogItem is a warehouse SKU. The table is shared with an external
// sync job, so rows may appear and vanish at any time; orders reference
// it by SKU string only. UnitPrice is minor currency units and Stock
// never goes negative.
type CatalogItem struct {
	ID        uint64    `json:"id" db:"id"`
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"name" db:"name"`
	Stock     int64     `json:"stock" db:"stock"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

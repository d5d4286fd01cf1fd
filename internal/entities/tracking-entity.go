package entities

import (
	"time"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

// Tracking carries the courier details attached at dispatch. At most one
// row per order; a re-dispatch after an issue cycle upserts it.
type Tracking struct {
	ID                   uint64     `json:"id" db:"id"`
	OrderID              uint64     `json:"order_id" db:"order_id"`
	TrackingID           *string    `json:"tracking_id,omitempty" db:"tracking_id"`
	CourierLink          *string    `json:"courier_link,omitempty" db:"courier_link"`
	ExpectedDeliveryTime *time.Time `json:"expected_delivery_time,omitempty" db:"expected_delivery_time"`
	DeliveredAt          *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`

	types.BaseEntity
}

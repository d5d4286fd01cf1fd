package entities

import (
	"time"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
)

// Order is the central aggregate. Monetary amounts are minor currency
// units (an int64 of cents) end-to-end; floats never touch money.
type Order struct {
	ID             uint64            `json:"id" db:"id"`
	OrderNumber    string            `json:"order_number" db:"order_number"`
	Status         lifecycle.Status  `json:"status" db:"status"`
	ArrangingStage *lifecycle.Status `json:"arranging_stage,omitempty" db:"arranging_stage"`
	Remarks        *string           `json:"remarks,omitempty" db:"remarks"`

	BranchID    uint64  `json:"branch_id" db:"branch_id"`
	RequesterID uint64  `json:"requester_id" db:"requester_id"`
	ManagerID   *uint64 `json:"manager_id,omitempty" db:"manager_id"`

	TotalItems int64 `json:"total_items" db:"total_items"`
	TotalValue int64 `json:"total_value" db:"total_value"`

	RequestedAt          time.Time  `json:"requested_at" db:"requested_at"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	ArrangingStartedAt   *time.Time `json:"arranging_started_at,omitempty" db:"arranging_started_at"`
	ArrangingCompletedAt *time.Time `json:"arranging_completed_at,omitempty" db:"arranging_completed_at"`
	SentForPackagingAt   *time.Time `json:"sent_for_packaging_at,omitempty" db:"sent_for_packaging_at"`
	PackagingStartedAt   *time.Time `json:"packaging_started_at,omitempty" db:"packaging_started_at"`
	PackagingCompletedAt *time.Time `json:"packaging_completed_at,omitempty" db:"packaging_completed_at"`
	DispatchedAt         *time.Time `json:"dispatched_at,omitempty" db:"dispatched_at"`
	ReceivedAt           *time.Time `json:"received_at,omitempty" db:"received_at"`
	ClosedAt             *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	AutoCloseAt          *time.Time `json:"auto_close_at,omitempty" db:"auto_close_at"`
	ExpectedDeliveryTime *time.Time `json:"expected_delivery_time,omitempty" db:"expected_delivery_time"`

	ArrangingMedia []string `json:"arranging_media" db:"arranging_media"`
	PackagingMedia []string `json:"packaging_media" db:"packaging_media"`
	TransitMedia   []string `json:"transit_media" db:"transit_media"`

	Items    []OrderItem `json:"items,omitempty"`
	Tracking *Tracking   `json:"tracking,omitempty"`

	Branch    *Branch `json:"branch,omitempty"`
	Requester *User   `json:"requester,omitempty"`
	Manager   *User   `json:"manager,omitempty"`

	types.BaseEntity
}

// OrderItem is one requested SKU line. Items reference the catalog by SKU
// string, not by id, so catalog churn cannot orphan an order.
type OrderItem struct {
	ID           uint64 `json:"id" db:"id"`
	OrderID      uint64 `json:"order_id" db:"order_id"`
	SKU          string `json:"sku" db:"sku"`
	ItemName     string `json:"item_name" db:"item_name"`
	QtyRequested int64  `json:"qty_requested" db:"qty_requested"`
	QtyApproved  *int64 `json:"qty_approved,omitempty" db:"qty_approved"`
	QtyReceived  *int64 `json:"qty_received,omitempty" db:"qty_received"`
	UnitPrice    *int64 `json:"unit_price,omitempty" db:"unit_price"`
	TotalPrice   *int64 `json:"total_price,omitempty" db:"total_price"`
	OutOfStock   bool   `json:"out_of_stock" db:"out_of_stock"`

	types.BaseEntity
}

// EffectiveQty is the quantity the order currently stands at: approved
// once a manager has ruled, requested before that.
func (i OrderItem) EffectiveQty() int64 {
	if i.QtyApproved != nil {
		return *i.QtyApproved
	}
	return i.QtyRequested
}

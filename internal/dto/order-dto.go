package dto

import "github.com/aarondl/null/v8"

type CreateOrderItemDTO struct {
	SKU string `json:"sku" validate:"required,sku"`
	Qty int64  `json:"qty" validate:"required,gt=0"`
}

type CreateOrderDTO struct {
	Items   []CreateOrderItemDTO `json:"items" validate:"required,min=1,dive"`
	Remarks *string              `json:"remarks,omitempty" validate:"omitempty,min=3"`
}

type ApproveOrderItemDTO struct {
	SKU         string `json:"sku" validate:"required,sku"`
	QtyApproved *int64 `json:"qty_approved,omitempty" validate:"omitempty,gte=0"`
	OutOfStock  bool   `json:"out_of_stock"`
}

type ApproveOrderDTO struct {
	Items   []ApproveOrderItemDTO `json:"items,omitempty" validate:"omitempty,dive"`
	Comment *string               `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type UpdateOrderStatusDTO struct {
	Status               string      `json:"status" validate:"required"`
	TrackingID           null.String `json:"tracking_id"`
	CourierLink          null.String `json:"courier_link" validate:"omitempty,url"`
	ExpectedDeliveryTime null.Time   `json:"expected_delivery_time"`
	Comment              *string     `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type DispatchOrderDTO struct {
	TrackingID           null.String `json:"tracking_id"`
	CourierLink          null.String `json:"courier_link" validate:"omitempty,url"`
	ExpectedDeliveryTime null.Time   `json:"expected_delivery_time"`
	Comment              *string     `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type ReceivedOrderItemDTO struct {
	SKU         string `json:"sku" validate:"required,sku"`
	QtyReceived int64  `json:"qty_received" validate:"gte=0"`
}

type ConfirmReceivedDTO struct {
	Items   []ReceivedOrderItemDTO `json:"items,omitempty" validate:"omitempty,dive"`
	Comment *string                `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type CloseOrderDTO struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type OrderItemResponseDTO struct {
	ID           uint64 `json:"id"`
	SKU          string `json:"sku"`
	ItemName     string `json:"item_name"`
	QtyRequested int64  `json:"qty_requested"`
	QtyApproved  *int64 `json:"qty_approved,omitempty"`
	QtyReceived  *int64 `json:"qty_received,omitempty"`
	UnitPrice    *int64 `json:"unit_price,omitempty"`
	TotalPrice   *int64 `json:"total_price,omitempty"`
	OutOfStock   bool   `json:"out_of_stock"`
}

type TrackingResponseDTO struct {
	TrackingID           *string `json:"tracking_id,omitempty"`
	CourierLink          *string `json:"courier_link,omitempty"`
	ExpectedDeliveryTime *string `json:"expected_delivery_time,omitempty"`
	DeliveredAt          *string `json:"delivered_at,omitempty"`
}

type OrderResponseDTO struct {
	ID             uint64                 `json:"id"`
	OrderNumber    string                 `json:"order_number"`
	Status         string                 `json:"status"`
	ArrangingStage *string                `json:"arranging_stage,omitempty"`
	Remarks        *string                `json:"remarks,omitempty"`
	Branch         ShortBranchDTO         `json:"branch"`
	Requester      ShortUserDTO           `json:"requester"`
	Manager        *ShortUserDTO          `json:"manager,omitempty"`
	TotalItems     int64                  `json:"total_items"`
	TotalValue     int64                  `json:"total_value"`
	Items          []OrderItemResponseDTO `json:"items"`
	Tracking       *TrackingResponseDTO   `json:"tracking,omitempty"`
	ArrangingMedia []string               `json:"arranging_media"`
	PackagingMedia []string               `json:"packaging_media"`
	TransitMedia   []string               `json:"transit_media"`
	RequestedAt    string                 `json:"requested_at"`
	ApprovedAt     *string                `json:"approved_at,omitempty"`
	DispatchedAt   *string                `json:"dispatched_at,omitempty"`
	ReceivedAt     *string                `json:"received_at,omitempty"`
	ClosedAt       *string                `json:"closed_at,omitempty"`
	AutoCloseAt    *string                `json:"auto_close_at,omitempty"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

type OrderListResponseDTO struct {
	List       []OrderResponseDTO `json:"list"`
	TotalCount uint64             `json:"total_count"`
}

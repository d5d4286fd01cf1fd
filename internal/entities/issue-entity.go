package entities

import "time"

// OrderIssue is one message in the raise/reply conversation of an order,
// optionally scoped to a single item. The conversation is append-only
// and rows are never edited; ordering by CreatedAt reconstructs it.
// Raise rows carry the requester's role; reply rows carry the manager's
// role plus RepliedBy/RepliedAt.
type OrderIssue struct {
	ID         uint64     `json:"id" db:"id"`
	OrderID    uint64     `json:"order_id" db:"order_id"`
	ItemID     *uint64    `json:"item_id,omitempty" db:"item_id"`
	Message    string     `json:"message" db:"message"`
	SenderRole string     `json:"sender_role" db:"sender_role"`
	RepliedBy  *uint64    `json:"replied_by,omitempty" db:"replied_by"`
	RepliedAt  *time.Time `json:"replied_at,omitempty" db:"replied_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ReceivedIssue records a post-delivery defect report against one item,
// with the media grouped by item rather than by message. Only writable
// while the order sits in CONFIRM_ORDER_RECEIVED.
type ReceivedIssue struct {
	ID         uint64    `json:"id" db:"id"`
	OrderID    uint64    `json:"order_id" db:"order_id"`
	ItemID     uint64    `json:"item_id" db:"item_id"`
	Reason     string    `json:"reason" db:"reason"`
	Media      []string  `json:"media" db:"media"`
	ReportedBy uint64    `json:"reported_by" db:"reported_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

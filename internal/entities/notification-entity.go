package entities

import "time"

// Notification is one persisted in-app message for one recipient,
// written best-effort by the fan-out listener after a transition commits.
type Notification struct {
	ID        uint64    `json:"id" db:"id"`
	UserID    uint64    `json:"user_id" db:"user_id"`
	OrderID   *uint64   `json:"order_id,omitempty" db:"order_id"`
	EventType string    `json:"event_type" db:"event_type"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

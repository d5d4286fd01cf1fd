package entities

import (
	"time"

	"github.com/google/uuid"
)

// OrderHistory is one audit row. Rows written inside the same database
// transaction share a TxID so a multi-step transition reads as one event.
type OrderHistory struct {
	ID        uint64    `json:"id" db:"id"`
	OrderID   uint64    `json:"order_id" db:"order_id"`
	UserID    *uint64   `json:"user_id,omitempty" db:"user_id"`
	EventType string    `json:"event_type" db:"event_type"`
	OldValue  *string   `json:"old_value,omitempty" db:"old_value"`
	NewValue  *string   `json:"new_value,omitempty" db:"new_value"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	TxID      uuid.UUID `json:"tx_id" db:"tx_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// History event types.
const (
	HistoryEventCreated        = "CREATED"
	HistoryEventStatusChange   = "STATUS_CHANGE"
	HistoryEventApproval       = "APPROVAL"
	HistoryEventMediaAttached  = "MEDIA_ATTACHED"
	HistoryEventIssueRaised    = "ISSUE_RAISED"
	HistoryEventManagerReply   = "MANAGER_REPLY"
	HistoryEventReplyConfirmed = "REPLY_CONFIRMED"
	HistoryEventReceivedIssue  = "RECEIVED_ISSUE"
	HistoryEventAutoClosed     = "AUTO_CLOSED"
)

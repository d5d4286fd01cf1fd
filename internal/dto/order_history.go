package dto

// TimelineEventDTO is one rendered history entry. Lines carry the
// human-readable sentences for the event, already ordered.
type TimelineEventDTO struct {
	TxID      string       `json:"tx_id,omitempty"`
	EventType string       `json:"event_type"`
	Lines     []string     `json:"lines"`
	Actor     ShortUserDTO `json:"actor"`
	CreatedAt string       `json:"created_at"`
}

type CreateOrderHistoryDTO struct {
	OrderID   uint64
	UserID    *uint64
	EventType string
	OldValue  string
	NewValue  string
	Comment   string
}

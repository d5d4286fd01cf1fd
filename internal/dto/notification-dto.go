package dto

type NotificationResponseDTO struct {
	ID        uint64  `json:"id"`
	OrderID   *uint64 `json:"order_id,omitempty"`
	EventType string  `json:"event_type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

type NotificationListResponseDTO struct {
	List        []NotificationResponseDTO `json:"list"`
	TotalCount  uint64                    `json:"total_count"`
	UnreadCount uint64                    `json:"unread_count"`
}

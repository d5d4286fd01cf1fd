package dto

// IssueEntryDTO is one reason or reply line, optionally scoped to a
// single order item.
type IssueEntryDTO struct {
	ItemID  *uint64 `json:"item_id,omitempty" validate:"omitempty,gt=0"`
	Message string  `json:"message" validate:"required,min=1"`
}

type RaiseIssueDTO struct {
	Reasons []IssueEntryDTO `json:"reasons" validate:"required,min=1,dive"`
}

// ReplyIssueDTO carries the manager's reply lines and any quantity
// revisions applied in the same transaction.
type ReplyIssueDTO struct {
	Replies   []IssueEntryDTO       `json:"replies" validate:"required,min=1,dive"`
	Revisions []ApproveOrderItemDTO `json:"revisions,omitempty" validate:"omitempty,dive"`
}

type ConfirmReplyDTO struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,min=3"`
}

type CreateReceivedIssueDTO struct {
	ItemID uint64 `json:"item_id" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required,min=1"`
}

type IssueEntryResponseDTO struct {
	ID         uint64        `json:"id"`
	ItemID     *uint64       `json:"item_id,omitempty"`
	Message    string        `json:"message"`
	SenderRole string        `json:"sender_role"`
	RepliedBy  *ShortUserDTO `json:"replied_by,omitempty"`
	RepliedAt  *string       `json:"replied_at,omitempty"`
	CreatedAt  string        `json:"created_at"`
}

type IssueConversationResponseDTO struct {
	OrderID     uint64                  `json:"order_id"`
	OrderNumber string                  `json:"order_number"`
	Status      string                  `json:"status"`
	Entries     []IssueEntryResponseDTO `json:"entries"`
}

type ReceivedIssueResponseDTO struct {
	ID        uint64       `json:"id"`
	OrderID   uint64       `json:"order_id"`
	ItemID    uint64       `json:"item_id"`
	Reason    string       `json:"reason"`
	Media     []string     `json:"media"`
	Reporter  ShortUserDTO `json:"reporter"`
	CreatedAt string       `json:"created_at"`
}

package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type OrderHistoryServiceInterface interface {
	GetTimeline(ctx context.Context, orderID uint64) ([]dto.TimelineEventDTO, error)
}

// OrderHistoryService renders the audit rows into a timeline. Rows that
// shared a transaction (same tx_id) collapse into one event with
// multiple lines, so an approval with media reads as one entry.
type OrderHistoryService struct {
	orderRepo   repositories.OrderRepositoryInterface
	historyRepo repositories.OrderHistoryRepositoryInterface
	logger      *zap.Logger
}

func NewOrderHistoryService(
	orderRepo repositories.OrderRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	logger *zap.Logger,
) OrderHistoryServiceInterface {
	return &OrderHistoryService{orderRepo: orderRepo, historyRepo: historyRepo, logger: logger}
}

func (s *OrderHistoryService) GetTimeline(ctx context.Context, orderID uint64) ([]dto.TimelineEventDTO, error) {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(actor, order); err != nil {
		return nil, err
	}

	rows, err := s.historyRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	timeline := make([]dto.TimelineEventDTO, 0, len(rows))
	for i := 0; i < len(rows); {
		j := i
		for j < len(rows) && rows[j].TxID == rows[i].TxID {
			j++
		}
		timeline = append(timeline, renderTimelineEvent(rows[i:j]))
		i = j
	}
	return timeline, nil
}

func renderTimelineEvent(group []repositories.OrderHistoryItem) dto.TimelineEventDTO {
	// The group's headline event is the first non-attachment row.
	primary := group[0]
	for _, row := range group {
		if row.EventType != entities.HistoryEventMediaAttached {
			primary = row
			break
		}
	}

	lines := make([]string, 0, len(group))
	for _, row := range group {
		lines = append(lines, renderHistoryLines(row)...)
	}

	event := dto.TimelineEventDTO{
		TxID:      primary.TxID.String(),
		EventType: primary.EventType,
		Lines:     lines,
		Actor:     dto.ShortUserDTO{FullName: "System", Role: constants.RoleSystem},
		CreatedAt: group[0].CreatedAt.Format(timeFormat),
	}
	if primary.UserID != nil {
		event.Actor = dto.ShortUserDTO{
			ID:       *primary.UserID,
			FullName: primary.ActorName.String,
			Role:     primary.ActorRole.String,
		}
	}
	return event
}

func renderHistoryLines(row repositories.OrderHistoryItem) []string {
	var line string
	switch row.EventType {
	case entities.HistoryEventCreated:
		line = "Order submitted for review"
	case entities.HistoryEventStatusChange:
		line = statusShiftLine(row)
	case entities.HistoryEventApproval:
		line = "Quantities ruled: " + utils.SafeDeref(row.NewValue)
	case entities.HistoryEventMediaAttached:
		line = "Media attached: " + utils.SafeDeref(row.NewValue)
	case entities.HistoryEventIssueRaised:
		line = "Issue raised"
	case entities.HistoryEventManagerReply:
		line = "Manager replied"
	case entities.HistoryEventReplyConfirmed:
		line = "Manager reply accepted"
	case entities.HistoryEventReceivedIssue:
		line = "Received-goods issue reported"
	case entities.HistoryEventAutoClosed:
		line = "Order closed automatically"
	default:
		line = row.EventType
	}
	if row.Comment != nil && *row.Comment != "" {
		line += fmt.Sprintf(" (%s)", *row.Comment)
	}

	lines := []string{line}
	if row.EventType != entities.HistoryEventStatusChange &&
		row.OldValue != nil && row.NewValue != nil {
		lines = append(lines, statusShiftLine(row))
	}
	return lines
}

func statusShiftLine(row repositories.OrderHistoryItem) string {
	if row.OldValue == nil || row.NewValue == nil {
		return "Status changed"
	}
	return fmt.Sprintf("Status changed from %s to %s", *row.OldValue, *row.NewValue)
}

package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type NotificationServiceInterface interface {
	GetMyNotifications(ctx context.Context, filter types.Filter) (*dto.NotificationListResponseDTO, error)
	MarkRead(ctx context.Context, id uint64) error
}

// NotificationService serves the recipient-facing side of the in-app
// inbox. Rows are written by the event listener, never here.
type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(notificationRepo repositories.NotificationRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, filter types.Filter) (*dto.NotificationListResponseDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	notifications, total, unread, err := s.notificationRepo.GetByUserID(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.NotificationResponseDTO, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, dto.NotificationResponseDTO{
			ID:        n.ID,
			OrderID:   n.OrderID,
			EventType: n.EventType,
			Title:     n.Title,
			Body:      n.Body,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(timeFormat),
		})
	}
	return &dto.NotificationListResponseDTO{List: list, TotalCount: total, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	return s.notificationRepo.MarkRead(ctx, userID, id)
}

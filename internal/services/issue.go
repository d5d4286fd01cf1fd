package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/events"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/stockledger"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/eventbus"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type IssueServiceInterface interface {
	RaiseIssue(ctx context.Context, orderID uint64, payload dto.RaiseIssueDTO) error
	ReplyToIssues(ctx context.Context, orderID uint64, payload dto.ReplyIssueDTO) error
	ReportReceivedIssue(ctx context.Context, orderID uint64, payload dto.CreateReceivedIssueDTO, media []string) error
	GetConversation(ctx context.Context, orderID uint64) (*dto.IssueConversationResponseDTO, error)
	GetReceivedIssues(ctx context.Context, orderID uint64) ([]dto.ReceivedIssueResponseDTO, error)
}

// IssueService runs the raise/reply conversation that can pause the
// main lifecycle. Conversation rows are append-only; nothing here ever
// edits a row once written.
type IssueService struct {
	txManager   repositories.TxManagerInterface
	orderRepo   repositories.OrderRepositoryInterface
	issueRepo   repositories.IssueRepositoryInterface
	historyRepo repositories.OrderHistoryRepositoryInterface
	ledger      stockledger.Ledger
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewIssueService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	issueRepo repositories.IssueRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	ledger stockledger.Ledger,
	bus *eventbus.Bus,
	logger *zap.Logger,
) IssueServiceInterface {
	return &IssueService{
		txManager:   txManager,
		orderRepo:   orderRepo,
		issueRepo:   issueRepo,
		historyRepo: historyRepo,
		ledger:      ledger,
		bus:         bus,
		logger:      logger,
	}
}

// RaiseIssue pauses the order on a dispute. The target depends on where
// the order stands: an issue in transit moves it to RAISED_ISSUE, an
// issue before confirmation to WAITING_FOR_MANAGER_REPLY. Every reason
// must carry text or the whole call is rejected before any row lands.
func (s *IssueService) RaiseIssue(ctx context.Context, orderID uint64, payload dto.RaiseIssueDTO) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	messages := make([]string, 0, len(payload.Reasons))
	for _, reason := range payload.Reasons {
		message := strings.TrimSpace(reason.Message)
		if message == "" {
			return apperrors.NewInvalidInputError("issue reasons must not be empty")
		}
		messages = append(messages, message)
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if txErr != nil {
			return txErr
		}
		if txErr := requireRequester(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusWaitingForManagerReply
		if order.Status == lifecycle.StatusInTransit {
			target = lifecycle.StatusRaisedIssue
		}
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}
		if txErr := validateItemRefs(order, payload.Reasons); txErr != nil {
			return txErr
		}

		for i, reason := range payload.Reasons {
			if txErr := s.issueRepo.CreateInTx(ctx, tx, &entities.OrderIssue{
				OrderID:    orderID,
				ItemID:     reason.ItemID,
				Message:    messages[i],
				SenderRole: actor.Role,
			}); txErr != nil {
				return txErr
			}
		}

		summary := strings.Join(messages, "; ")
		patch := repositories.OrderPatch{Status: &target, Remarks: &summary}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, orderID, patch); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, issueHistory(order, target, entities.HistoryEventIssueRaised, &actor.UserID, summary)); txErr != nil {
			return txErr
		}

		recipients := managerRecipients(order)
		recipients.Roles = append(recipients.Roles, constants.RoleAdmin)
		event = newOrderEvent(constants.EventIssueRaised, order, target, &actor.UserID, recipients)
		event.Body = fmt.Sprintf("Order %s: %s", order.OrderNumber, summary)
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// ReplyToIssues appends the manager's reply rows and, when the order is
// waiting on the reply, moves it to MANAGER_REPLIED. A reply while the
// order is in the transit dispute state appends without a status change
// so receipt confirmation stays available. Quantity revisions ride the
// same transaction.
func (s *IssueService) ReplyToIssues(ctx context.Context, orderID uint64, payload dto.ReplyIssueDTO) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	messages := make([]string, 0, len(payload.Replies))
	for _, reply := range payload.Replies {
		message := strings.TrimSpace(reply.Message)
		if message == "" {
			return apperrors.NewInvalidInputError("reply messages must not be empty")
		}
		messages = append(messages, message)
	}
	revisions, err := revisionMap(payload.Revisions)
	if err != nil {
		return err
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if txErr != nil {
			return txErr
		}
		if txErr := requireVisible(actor, order); txErr != nil {
			return txErr
		}

		target := order.Status
		switch order.Status {
		case lifecycle.StatusWaitingForManagerReply:
			target = lifecycle.StatusManagerReplied
			if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
				return txErr
			}
		case lifecycle.StatusRaisedIssue:
			if actor.Role != constants.RoleManager && actor.Role != constants.RoleAdmin {
				return apperrors.NewForbiddenError("only a manager or admin may reply to issues")
			}
		default:
			return authorizeTransition(order.Status, lifecycle.StatusManagerReplied, actor.Role)
		}
		if txErr := validateItemRefs(order, payload.Replies); txErr != nil {
			return txErr
		}

		now := time.Now()
		for i, reply := range payload.Replies {
			if txErr := s.issueRepo.CreateInTx(ctx, tx, &entities.OrderIssue{
				OrderID:    orderID,
				ItemID:     reply.ItemID,
				Message:    messages[i],
				SenderRole: actor.Role,
				RepliedBy:  &actor.UserID,
				RepliedAt:  &now,
			}); txErr != nil {
				return txErr
			}
		}

		summary := strings.Join(messages, "; ")
		history := issueHistory(order, target, entities.HistoryEventManagerReply, &actor.UserID, summary)

		patch := repositories.OrderPatch{}
		if target != order.Status {
			patch.Status = &target
		}
		if len(revisions) > 0 {
			totalValue, txErr := applyApprovals(ctx, tx, s.orderRepo, s.ledger, order, revisions)
			if txErr != nil {
				return txErr
			}
			patch.TotalValue = &totalValue
			if txErr := s.historyRepo.CreateInTx(ctx, tx, &entities.OrderHistory{
				OrderID:   order.ID,
				UserID:    &actor.UserID,
				EventType: entities.HistoryEventApproval,
				NewValue:  utils.ToPtr(rulingSummary(order.Items)),
				TxID:      history.TxID,
			}); txErr != nil {
				return txErr
			}
		}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, orderID, patch); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		event = newOrderEvent(constants.EventIssueReplied, order, target, &actor.UserID,
			events.RecipientSpec{UserIDs: []uint64{order.RequesterID}})
		event.Body = fmt.Sprintf("Order %s: %s", order.OrderNumber, summary)
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// ReportReceivedIssue files a complaint about delivered goods. It never
// moves the order; it exists only while the order sits in
// CONFIRM_ORDER_RECEIVED awaiting close.
func (s *IssueService) ReportReceivedIssue(ctx context.Context, orderID uint64, payload dto.CreateReceivedIssueDTO, media []string) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		return apperrors.NewInvalidInputError("reason must not be empty")
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if txErr != nil {
			return txErr
		}
		if txErr := requireRequester(actor, order); txErr != nil {
			return txErr
		}
		if order.Status != lifecycle.StatusConfirmOrderReceived {
			return apperrors.NewStateConflictError(fmt.Sprintf(
				"received issues can only be reported in %s, order is %s",
				lifecycle.StatusConfirmOrderReceived, order.Status), nil)
		}
		if !orderHasItemID(order, payload.ItemID) {
			return apperrors.NewInvalidInputError("item %d is not part of order %s", payload.ItemID, order.OrderNumber)
		}

		if _, txErr := s.issueRepo.CreateReceivedInTx(ctx, tx, &entities.ReceivedIssue{
			OrderID:    orderID,
			ItemID:     payload.ItemID,
			Reason:     reason,
			Media:      emptyIfNil(media),
			ReportedBy: actor.UserID,
		}); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, issueHistory(order, order.Status, entities.HistoryEventReceivedIssue, &actor.UserID, reason)); txErr != nil {
			return txErr
		}

		recipients := managerRecipients(order)
		recipients.Roles = append(recipients.Roles, constants.RoleAdmin, constants.RoleDispatcher)
		event = newOrderEvent(constants.EventReceivedIssue, order, order.Status, &actor.UserID, recipients)
		event.Title = fmt.Sprintf("Order %s has a received-goods issue", order.OrderNumber)
		event.Body = fmt.Sprintf("Order %s: %s", order.OrderNumber, reason)
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

func (s *IssueService) GetConversation(ctx context.Context, orderID uint64) (*dto.IssueConversationResponseDTO, error) {
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

	rows, err := s.issueRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.IssueEntryResponseDTO, 0, len(rows))
	for _, row := range rows {
		entry := dto.IssueEntryResponseDTO{
			ID:         row.ID,
			ItemID:     row.ItemID,
			Message:    row.Message,
			SenderRole: row.SenderRole,
			RepliedAt:  formatTimePtr(row.RepliedAt),
			CreatedAt:  row.CreatedAt.Format(timeFormat),
		}
		if row.RepliedBy != nil {
			// A reply row's sender role is the replier's role.
			entry.RepliedBy = &dto.ShortUserDTO{
				ID:       *row.RepliedBy,
				FullName: row.ReplierName.String,
				Role:     row.SenderRole,
			}
		}
		entries = append(entries, entry)
	}

	return &dto.IssueConversationResponseDTO{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Entries:     entries,
	}, nil
}

func (s *IssueService) GetReceivedIssues(ctx context.Context, orderID uint64) ([]dto.ReceivedIssueResponseDTO, error) {
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

	rows, err := s.issueRepo.FindReceivedByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ReceivedIssueResponseDTO, 0, len(rows))
	for _, row := range rows {
		list = append(list, dto.ReceivedIssueResponseDTO{
			ID:      row.ID,
			OrderID: row.OrderID,
			ItemID:  row.ItemID,
			Reason:  row.Reason,
			Media:   emptyIfNil(row.Media),
			Reporter: dto.ShortUserDTO{
				ID:       row.ReportedBy,
				FullName: row.ReporterName.String,
				Role:     row.ReporterRole.String,
			},
			CreatedAt: row.CreatedAt.Format(timeFormat),
		})
	}
	return list, nil
}

// validateItemRefs confirms every item-scoped entry points at an item
// of this order.
func validateItemRefs(order *entities.Order, entries []dto.IssueEntryDTO) error {
	for _, entry := range entries {
		if entry.ItemID == nil {
			continue
		}
		if !orderHasItemID(order, *entry.ItemID) {
			return apperrors.NewInvalidInputError("item %d is not part of order %s", *entry.ItemID, order.OrderNumber)
		}
	}
	return nil
}

func orderHasItemID(order *entities.Order, itemID uint64) bool {
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return true
		}
	}
	return false
}

func issueHistory(order *entities.Order, to lifecycle.Status, eventType string, actorID *uint64, comment string) *entities.OrderHistory {
	history := &entities.OrderHistory{
		OrderID:   order.ID,
		UserID:    actorID,
		EventType: eventType,
		Comment:   &comment,
		TxID:      uuid.New(),
	}
	if to != order.Status {
		history.OldValue = utils.ToPtr(string(order.Status))
		history.NewValue = utils.ToPtr(string(to))
	}
	return history
}

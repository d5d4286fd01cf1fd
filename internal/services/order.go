package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/workhours"
)

const (
	timeFormat = "2006-01-02 15:04:05"
	dateFormat = "2006-01-02"

	// orderNumberAttempts bounds the retry loop around the generated
	// order number's unique constraint.
	orderNumberAttempts = 3

	// autoCloseBatchSize caps how many overdue orders one sweep closes.
	autoCloseBatchSize = 100
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.OrderResponseDTO, error)
	GetOrders(ctx context.Context, filter types.Filter) ([]dto.OrderResponseDTO, uint64, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderResponseDTO, error)
	ApproveOrder(ctx context.Context, id uint64, payload dto.ApproveOrderDTO) error
	ConfirmOrder(ctx context.Context, id uint64) error
	ConfirmReply(ctx context.Context, id uint64, payload dto.ConfirmReplyDTO) error
	UpdateOrderStatus(ctx context.Context, id uint64, payload dto.UpdateOrderStatusDTO, media []string) error
	DispatchOrder(ctx context.Context, id uint64, payload dto.DispatchOrderDTO, media []string) error
	ConfirmReceived(ctx context.Context, id uint64, payload dto.ConfirmReceivedDTO, media []string) error
	CloseOrder(ctx context.Context, id uint64, payload dto.CloseOrderDTO) error
	AutoCloseDue(ctx context.Context) (int, error)
}

// OrderService drives the order lifecycle. Every mutation follows the
// same shape: lock the order row, authorize the transition against the
// table in the lifecycle package, apply the patch and history rows in
// one transaction, then publish the event after commit.
type OrderService struct {
	txManager    repositories.TxManagerInterface
	orderRepo    repositories.OrderRepositoryInterface
	trackingRepo repositories.TrackingRepositoryInterface
	historyRepo  repositories.OrderHistoryRepositoryInterface
	branchRepo   repositories.BranchRepositoryInterface
	ledger       stockledger.Ledger
	bus          *eventbus.Bus
	calendar     workhours.Calendar
	autoCloseHrs int
	logger       *zap.Logger
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	trackingRepo repositories.TrackingRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	branchRepo repositories.BranchRepositoryInterface,
	ledger stockledger.Ledger,
	bus *eventbus.Bus,
	calendar workhours.Calendar,
	autoCloseAfterHours int,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		trackingRepo: trackingRepo,
		historyRepo:  historyRepo,
		branchRepo:   branchRepo,
		ledger:       ledger,
		bus:          bus,
		calendar:     calendar,
		autoCloseHrs: autoCloseAfterHours,
		logger:       logger,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.OrderResponseDTO, error) {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(lifecycle.StatusNone, lifecycle.StatusUnderReview, actor.Role); err != nil {
		return nil, err
	}
	if actor.BranchID == nil {
		return nil, apperrors.NewForbiddenError("actor is not attached to a branch")
	}
	branch, err := s.branchRepo.FindBranch(ctx, *actor.BranchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewForbiddenError("actor's branch no longer exists")
		}
		return nil, err
	}
	if !branch.IsActive {
		return nil, apperrors.NewForbiddenError("deactivated branches cannot place orders")
	}

	items, totalItems, totalValue, err := s.resolveOrderItems(ctx, payload.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var (
		orderID uint64
		event   events.OrderEvent
	)
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order := &entities.Order{
			OrderNumber: utils.GenerateOrderNumber(constants.OrderNumberPrefix),
			Status:      lifecycle.StatusUnderReview,
			Remarks:     payload.Remarks,
			BranchID:    *actor.BranchID,
			RequesterID: actor.UserID,
			TotalItems:  totalItems,
			TotalValue:  totalValue,
			RequestedAt: now,
			Items:       items,
		}

		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			id, txErr := s.orderRepo.CreateOrderInTx(ctx, tx, order)
			if txErr != nil {
				return txErr
			}
			orderID = id
			return s.historyRepo.CreateInTx(ctx, tx, &entities.OrderHistory{
				OrderID:   id,
				UserID:    &actor.UserID,
				EventType: entities.HistoryEventCreated,
				NewValue:  utils.ToPtr(string(lifecycle.StatusUnderReview)),
				Comment:   payload.Remarks,
				TxID:      uuid.New(),
			})
		})
		if err == nil {
			event = events.OrderEvent{
				EventType:   constants.EventOrderCreated,
				OrderID:     orderID,
				OrderNumber: order.OrderNumber,
				ActorID:     &actor.UserID,
				ToStatus:    string(lifecycle.StatusUnderReview),
				Title:       fmt.Sprintf("Order %s submitted", order.OrderNumber),
				Body:        fmt.Sprintf("Order %s with %d items is awaiting review.", order.OrderNumber, totalItems),
				Recipients: events.RecipientSpec{
					UserIDs:     []uint64{actor.UserID},
					Roles:       []string{constants.RoleAdmin},
					BranchID:    *actor.BranchID,
					BranchRoles: []string{constants.RoleManager, constants.RoleBranchUser},
				},
			}
			break
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate a unique order number: %w", err)
	}

	s.bus.Publish(ctx, event)
	return s.FindOrder(ctx, orderID)
}

// resolveOrderItems turns the requested lines into priced order items.
// A SKU with zero stock becomes an out-of-stock line with no price; an
// in-stock SKU must cover the requested quantity or the whole request
// is rejected.
func (s *OrderService) resolveOrderItems(ctx context.Context, lines []dto.CreateOrderItemDTO) ([]entities.OrderItem, int64, int64, error) {
	seen := make(map[string]bool, len(lines))
	items := make([]entities.OrderItem, 0, len(lines))
	var totalItems, totalValue int64

	for _, line := range lines {
		sku := strings.TrimSpace(line.SKU)
		if sku == "" {
			return nil, 0, 0, apperrors.NewInvalidInputError("item sku must not be empty")
		}
		if seen[sku] {
			return nil, 0, 0, apperrors.NewInvalidInputError("duplicate sku %q: merge the quantities into one line", sku)
		}
		seen[sku] = true

		catalogItem, err := s.ledger.Reserve(ctx, sku, line.Qty)
		if err != nil {
			return nil, 0, 0, ledgerFault(err, sku)
		}

		item := entities.OrderItem{
			SKU:          sku,
			ItemName:     catalogItem.Name,
			QtyRequested: line.Qty,
		}
		if catalogItem.Stock == 0 {
			// The branch may order it anyway; it ships unpriced once
			// the manager sources it.
			item.OutOfStock = true
		} else {
			total := catalogItem.UnitPrice * line.Qty
			item.UnitPrice = utils.ToPtr(catalogItem.UnitPrice)
			item.TotalPrice = utils.ToPtr(total)
			totalValue += total
		}
		totalItems += line.Qty
		items = append(items, item)
	}
	return items, totalItems, totalValue, nil
}

func activeCatalogItem(ctx context.Context, ledger stockledger.Ledger, sku string) (*entities.CatalogItem, error) {
	item, err := ledger.FindBySKU(ctx, sku)
	if err != nil {
		return nil, ledgerFault(err, sku)
	}
	return item, nil
}

// ledgerFault maps ledger sentinels onto request-level errors.
func ledgerFault(err error, sku string) error {
	var short *stockledger.InsufficientStockError
	switch {
	case errors.As(err, &short):
		return apperrors.NewInvalidInputError(
			"insufficient stock for sku %q: requested %d, available %d", sku, short.Requested, short.Available)
	case errors.Is(err, stockledger.ErrUnknownSKU):
		return apperrors.NewInvalidInputError("unknown sku %q", sku)
	case errors.Is(err, stockledger.ErrInactiveSKU):
		return apperrors.NewInvalidInputError("sku %q is no longer offered", sku)
	}
	return err
}

func (s *OrderService) GetOrders(ctx context.Context, filter types.Filter) ([]dto.OrderResponseDTO, uint64, error) {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	scope := repositories.OrderScope{}
	switch actor.Role {
	case constants.RoleBranchUser, constants.RoleManager:
		if actor.BranchID == nil {
			return nil, 0, apperrors.NewForbiddenError("actor is not attached to a branch")
		}
		scope.BranchID = actor.BranchID
	}

	orders, total, err := s.orderRepo.GetOrders(ctx, filter, scope)
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.OrderResponseDTO, 0, len(orders))
	for i := range orders {
		list = append(list, *toOrderResponseDTO(&orders[i]))
	}
	return list, total, nil
}

func (s *OrderService) FindOrder(ctx context.Context, id uint64) (*dto.OrderResponseDTO, error) {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(actor, order); err != nil {
		return nil, err
	}
	return toOrderResponseDTO(order), nil
}

// ApproveOrder records the manager's ruling on each line and moves the
// order to CONFIRM_PENDING. Lines without a revision keep the requested
// quantity; revised quantities may exceed the requested one.
func (s *OrderService) ApproveOrder(ctx context.Context, id uint64, payload dto.ApproveOrderDTO) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	revisions, err := revisionMap(payload.Items)
	if err != nil {
		return err
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireVisible(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusConfirmPending
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		totalValue, txErr := applyApprovals(ctx, tx, s.orderRepo, s.ledger, order, revisions)
		if txErr != nil {
			return txErr
		}

		now := time.Now()
		patch := repositories.OrderPatch{
			Status:     &target,
			ManagerID:  &actor.UserID,
			ApprovedAt: &now,
			TotalValue: &totalValue,
		}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		history := statusChangeHistory(order, target, &actor.UserID, payload.Comment)
		if len(revisions) > 0 {
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
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		event = newOrderEvent(constants.EventOrderApproved, order, target, &actor.UserID,
			events.RecipientSpec{UserIDs: []uint64{order.RequesterID}})
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

func revisionMap(items []dto.ApproveOrderItemDTO) (map[string]dto.ApproveOrderItemDTO, error) {
	revisions := make(map[string]dto.ApproveOrderItemDTO, len(items))
	for _, rev := range items {
		if _, dup := revisions[rev.SKU]; dup {
			return nil, apperrors.NewInvalidInputError("duplicate revision for sku %q", rev.SKU)
		}
		revisions[rev.SKU] = rev
	}
	return revisions, nil
}

// applyApprovals writes the per-line ruling and returns the recomputed
// order value. Flipping a line back in stock re-reads the catalog price;
// out-of-stock lines stay unpriced. Shared by the approval and the
// issue-reply paths.
func applyApprovals(ctx context.Context, tx pgx.Tx, orderRepo repositories.OrderRepositoryInterface, ledger stockledger.Ledger, order *entities.Order, revisions map[string]dto.ApproveOrderItemDTO) (int64, error) {
	bySKU := make(map[string]bool, len(order.Items))
	for i := range order.Items {
		bySKU[order.Items[i].SKU] = true
	}
	for sku := range revisions {
		if !bySKU[sku] {
			return 0, apperrors.NewInvalidInputError("sku %q is not part of order %s", sku, order.OrderNumber)
		}
	}

	var totalValue int64
	for i := range order.Items {
		item := &order.Items[i]
		qty := item.QtyRequested
		outOfStock := item.OutOfStock
		if rev, ok := revisions[item.SKU]; ok {
			outOfStock = rev.OutOfStock
			if rev.QtyApproved != nil {
				qty = *rev.QtyApproved
			}
		} else if item.QtyApproved != nil {
			// A line already ruled on keeps its ruling.
			qty = *item.QtyApproved
		}

		item.QtyApproved = &qty
		item.OutOfStock = outOfStock
		if outOfStock {
			item.UnitPrice = nil
			item.TotalPrice = nil
		} else {
			if item.UnitPrice == nil {
				catalogItem, err := activeCatalogItem(ctx, ledger, item.SKU)
				if err != nil {
					return 0, err
				}
				item.UnitPrice = utils.ToPtr(catalogItem.UnitPrice)
			}
			item.TotalPrice = utils.ToPtr(*item.UnitPrice * qty)
			totalValue += *item.TotalPrice
		}

		if err := orderRepo.UpdateItemApprovalInTx(ctx, tx, order.ID, *item); err != nil {
			return 0, err
		}
	}
	return totalValue, nil
}

// ConfirmOrder is the requester accepting the manager's ruling, from a
// plain approval or from a manager reply to an issue.
func (s *OrderService) ConfirmOrder(ctx context.Context, id uint64) error {
	return s.confirmToApproved(ctx, id, nil)
}

// ConfirmReply resolves an issue conversation by accepting the manager's
// reply. The order returns to APPROVED_ORDER with the approval restated.
func (s *OrderService) ConfirmReply(ctx context.Context, id uint64, payload dto.ConfirmReplyDTO) error {
	return s.confirmToApproved(ctx, id, payload.Comment)
}

func (s *OrderService) confirmToApproved(ctx context.Context, id uint64, comment *string) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireRequester(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusApprovedOrder
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		now := time.Now()
		patch := repositories.OrderPatch{Status: &target}
		eventType := constants.EventOrderConfirmed
		history := statusChangeHistory(order, target, &actor.UserID, comment)
		if order.Status == lifecycle.StatusManagerReplied {
			// Confirming a reply restates the approval moment.
			patch.ApprovedAt = &now
			eventType = constants.EventReplyConfirmed
			history.EventType = entities.HistoryEventReplyConfirmed
		}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		recipients := managerRecipients(order)
		recipients.Roles = append(recipients.Roles, constants.RoleAdmin)
		event = newOrderEvent(eventType, order, target, &actor.UserID, recipients)
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// UpdateOrderStatus routes a generic status request to the operation
// that owns the target. Plain movement targets are handled inline.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint64, payload dto.UpdateOrderStatusDTO, media []string) error {
	target, err := lifecycle.Parse(payload.Status)
	if err != nil {
		var unknown *lifecycle.UnknownStatusError
		if errors.As(err, &unknown) {
			return apperrors.NewInvalidInputError("unknown status %q", payload.Status)
		}
		return err
	}

	switch target {
	case lifecycle.StatusConfirmPending:
		return s.ApproveOrder(ctx, id, dto.ApproveOrderDTO{Comment: payload.Comment})
	case lifecycle.StatusApprovedOrder:
		return s.confirmToApproved(ctx, id, payload.Comment)
	case lifecycle.StatusInTransit:
		return s.DispatchOrder(ctx, id, dto.DispatchOrderDTO{
			TrackingID:           payload.TrackingID,
			CourierLink:          payload.CourierLink,
			ExpectedDeliveryTime: payload.ExpectedDeliveryTime,
			Comment:              payload.Comment,
		}, media)
	case lifecycle.StatusConfirmOrderReceived:
		return s.ConfirmReceived(ctx, id, dto.ConfirmReceivedDTO{Comment: payload.Comment}, media)
	case lifecycle.StatusClosedOrder:
		return s.CloseOrder(ctx, id, dto.CloseOrderDTO{Comment: payload.Comment})
	case lifecycle.StatusRaisedIssue, lifecycle.StatusWaitingForManagerReply, lifecycle.StatusManagerReplied:
		return apperrors.NewInvalidInputError("status %s is reached through the issue endpoints", target)
	}
	return s.moveOrder(ctx, id, target, payload.Comment, media)
}

// moveOrder performs the warehouse movement transitions (arranging and
// packaging stages). Media attached on the way is appended to the phase
// column of the target status.
func (s *OrderService) moveOrder(ctx context.Context, id uint64, target lifecycle.Status, comment *string, media []string) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireVisible(actor, order); txErr != nil {
			return txErr
		}
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		patch := repositories.OrderPatch{Status: &target}
		stampArrival(&patch, target, time.Now())
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		history := statusChangeHistory(order, target, &actor.UserID, comment)
		if txErr := s.appendMedia(ctx, tx, order, target, media, actor.UserID, history.TxID); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		event = newOrderEvent(constants.EventStatusChanged, order, target, &actor.UserID,
			movementRecipients(order, target))
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// DispatchOrder hands the order to the courier. Stock for the in-stock
// lines is deducted after commit; a failed deduction is logged and the
// dispatch stands.
func (s *OrderService) DispatchOrder(ctx context.Context, id uint64, payload dto.DispatchOrderDTO, media []string) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if payload.ExpectedDeliveryTime.Valid && payload.ExpectedDeliveryTime.Time.Before(time.Now()) {
		return apperrors.NewInvalidInputError("expected_delivery_time must not be in the past")
	}

	var (
		event      events.OrderEvent
		deductions []entities.OrderItem
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireVisible(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusInTransit
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		now := time.Now()
		patch := repositories.OrderPatch{
			Status:               &target,
			DispatchedAt:         &now,
			ExpectedDeliveryTime: payload.ExpectedDeliveryTime.Ptr(),
		}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		if txErr := s.trackingRepo.UpsertInTx(ctx, tx, &entities.Tracking{
			OrderID:              id,
			TrackingID:           payload.TrackingID.Ptr(),
			CourierLink:          payload.CourierLink.Ptr(),
			ExpectedDeliveryTime: payload.ExpectedDeliveryTime.Ptr(),
		}); txErr != nil {
			return txErr
		}
		history := statusChangeHistory(order, target, &actor.UserID, payload.Comment)
		if txErr := s.appendMedia(ctx, tx, order, target, media, actor.UserID, history.TxID); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		for _, item := range order.Items {
			if !item.OutOfStock {
				deductions = append(deductions, item)
			}
		}
		event = newOrderEvent(constants.EventOrderDispatched, order, target, &actor.UserID,
			requesterAndManager(order))
		return nil
	})
	if err != nil {
		return err
	}

	for _, item := range deductions {
		if err := s.ledger.Deduct(ctx, item.SKU, item.EffectiveQty()); err != nil {
			s.logger.Error("stock deduction failed after dispatch",
				zap.Uint64("order_id", id),
				zap.String("sku", item.SKU),
				zap.Int64("qty", item.EffectiveQty()),
				zap.Error(err))
		}
	}

	s.bus.Publish(ctx, event)
	return nil
}

// ConfirmReceived is the requester acknowledging delivery. At least one
// photo of the received goods is mandatory; the auto-close deadline is
// set a fixed number of working hours ahead.
func (s *OrderService) ConfirmReceived(ctx context.Context, id uint64, payload dto.ConfirmReceivedDTO, media []string) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		return apperrors.NewInvalidInputError("at least one delivery photo is required to confirm receipt")
	}

	received := make(map[string]int64, len(payload.Items))
	for _, line := range payload.Items {
		if _, dup := received[line.SKU]; dup {
			return apperrors.NewInvalidInputError("duplicate received quantity for sku %q", line.SKU)
		}
		received[line.SKU] = line.QtyReceived
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireRequester(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusConfirmOrderReceived
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		bySKU := make(map[string]bool, len(order.Items))
		for i := range order.Items {
			bySKU[order.Items[i].SKU] = true
		}
		for sku := range received {
			if !bySKU[sku] {
				return apperrors.NewInvalidInputError("sku %q is not part of order %s", sku, order.OrderNumber)
			}
		}

		now := time.Now()
		autoCloseAt := s.calendar.AddHours(now, s.autoCloseHrs)
		patch := repositories.OrderPatch{
			Status:      &target,
			ReceivedAt:  &now,
			AutoCloseAt: &autoCloseAt,
		}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		if txErr := s.orderRepo.SetReceivedQuantitiesInTx(ctx, tx, id, received); txErr != nil {
			return txErr
		}
		if txErr := s.trackingRepo.MarkDeliveredInTx(ctx, tx, id, now); txErr != nil {
			return txErr
		}
		history := statusChangeHistory(order, target, &actor.UserID, payload.Comment)
		if txErr := s.appendMedia(ctx, tx, order, target, media, actor.UserID, history.TxID); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, history); txErr != nil {
			return txErr
		}

		recipients := requesterAndManager(order)
		recipients.Roles = append(recipients.Roles, constants.RoleDispatcher)
		event = newOrderEvent(constants.EventOrderReceived, order, target, &actor.UserID, recipients)
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

func (s *OrderService) CloseOrder(ctx context.Context, id uint64, payload dto.CloseOrderDTO) error {
	actor, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	var event events.OrderEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := requireVisible(actor, order); txErr != nil {
			return txErr
		}
		target := lifecycle.StatusClosedOrder
		if txErr := authorizeTransition(order.Status, target, actor.Role); txErr != nil {
			return txErr
		}

		now := time.Now()
		patch := repositories.OrderPatch{Status: &target, ClosedAt: &now}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, statusChangeHistory(order, target, &actor.UserID, payload.Comment)); txErr != nil {
			return txErr
		}

		event = newOrderEvent(constants.EventOrderClosed, order, target, &actor.UserID,
			events.RecipientSpec{AllActive: true})
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// AutoCloseDue closes every order whose receipt window has elapsed and
// returns how many it closed. Each order is closed in its own
// transaction so one failure cannot hold the rest of the batch.
func (s *OrderService) AutoCloseDue(ctx context.Context) (int, error) {
	ids, err := s.orderRepo.FindDueForAutoClose(ctx, time.Now(), autoCloseBatchSize)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, id := range ids {
		if err := s.autoCloseOne(ctx, id); err != nil {
			var httpErr *apperrors.HttpError
			if errors.As(err, &httpErr) && httpErr.Code == http.StatusConflict {
				// Someone closed it between the sweep query and the lock.
				s.logger.Debug("order no longer due for auto-close", zap.Uint64("order_id", id))
				continue
			}
			s.logger.Error("auto-close failed", zap.Uint64("order_id", id), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *OrderService) autoCloseOne(ctx context.Context, id uint64) error {
	var event events.OrderEvent
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, txErr := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		target := lifecycle.StatusClosedOrder
		if txErr := authorizeTransition(order.Status, target, constants.RoleSystem); txErr != nil {
			return txErr
		}

		now := time.Now()
		patch := repositories.OrderPatch{Status: &target, ClosedAt: &now}
		if txErr := s.orderRepo.UpdateOrderInTx(ctx, tx, id, patch); txErr != nil {
			return txErr
		}
		if txErr := s.historyRepo.CreateInTx(ctx, tx, &entities.OrderHistory{
			OrderID:   order.ID,
			EventType: entities.HistoryEventAutoClosed,
			OldValue:  utils.ToPtr(string(order.Status)),
			NewValue:  utils.ToPtr(string(target)),
			TxID:      uuid.New(),
		}); txErr != nil {
			return txErr
		}

		event = newOrderEvent(constants.EventOrderClosed, order, target, nil,
			events.RecipientSpec{AllActive: true})
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// appendMedia stores uploaded paths on the phase column that the target
// status belongs to and records the attachment in the history.
func (s *OrderService) appendMedia(ctx context.Context, tx pgx.Tx, order *entities.Order, target lifecycle.Status, media []string, actorID uint64, txID uuid.UUID) error {
	if len(media) == 0 {
		return nil
	}
	column := mediaColumnFor(target)
	if column == "" {
		return apperrors.NewInvalidInputError("status %s does not accept media", target)
	}
	if err := s.orderRepo.AppendMediaInTx(ctx, tx, order.ID, column, media); err != nil {
		return err
	}
	return s.historyRepo.CreateInTx(ctx, tx, &entities.OrderHistory{
		OrderID:   order.ID,
		UserID:    &actorID,
		EventType: entities.HistoryEventMediaAttached,
		NewValue:  utils.ToPtr(strings.Join(media, ", ")),
		TxID:      txID,
	})
}

// ---- shared lifecycle helpers ----

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// authorizeTransition translates the lifecycle errors into transport
// errors: an impossible edge is a conflict, a wrong role is forbidden.
func authorizeTransition(from, to lifecycle.Status, role string) error {
	err := lifecycle.Authorize(from, to, role)
	if err == nil {
		return nil
	}
	var transitionErr *lifecycle.TransitionError
	if errors.As(err, &transitionErr) {
		return apperrors.NewStateConflictError(transitionErr.Error(), transitionErr)
	}
	var roleErr *lifecycle.RoleError
	if errors.As(err, &roleErr) {
		return apperrors.NewForbiddenError(roleErr.Error())
	}
	return err
}

// requireVisible hides other branches' orders from branch-bound roles.
// A hidden order reads as not found, never as forbidden.
func requireVisible(actor *dto.UserClaims, order *entities.Order) error {
	switch actor.Role {
	case constants.RoleAdmin, constants.RolePackager, constants.RoleDispatcher:
		return nil
	case constants.RoleManager, constants.RoleBranchUser:
		if actor.BranchID != nil && *actor.BranchID == order.BranchID {
			return nil
		}
	}
	return apperrors.NewNotFoundError("order not found")
}

// requireRequester gates the operations only the order's author may
// perform: confirming, receiving and raising issues.
func requireRequester(actor *dto.UserClaims, order *entities.Order) error {
	if err := requireVisible(actor, order); err != nil {
		return err
	}
	if order.RequesterID != actor.UserID {
		return apperrors.NewForbiddenError("only the requester may perform this action")
	}
	return nil
}

// stampArrival sets the milestone column of the status being entered.
// Receipt's auto-close deadline is set by the caller since it needs the
// working-hours calendar.
func stampArrival(patch *repositories.OrderPatch, to lifecycle.Status, now time.Time) {
	switch to {
	case lifecycle.StatusArranging:
		patch.ArrangingStartedAt = &now
		patch.ArrangingStage = utils.ToPtr(to)
	case lifecycle.StatusArranged:
		patch.ArrangingCompletedAt = &now
		patch.ArrangingStage = utils.ToPtr(to)
	case lifecycle.StatusSentForPackaging:
		patch.SentForPackagingAt = &now
		patch.ArrangingStage = utils.ToPtr(to)
	case lifecycle.StatusUnderPackaging:
		patch.PackagingStartedAt = &now
		patch.ClearArrangingStage = true
	case lifecycle.StatusPackagingCompleted:
		patch.PackagingCompletedAt = &now
	}
}

// mediaColumnFor maps a target status to the media column of its phase.
func mediaColumnFor(to lifecycle.Status) string {
	switch to {
	case lifecycle.StatusArranging, lifecycle.StatusArranged, lifecycle.StatusSentForPackaging:
		return "arranging_media"
	case lifecycle.StatusUnderPackaging, lifecycle.StatusPackagingCompleted:
		return "packaging_media"
	case lifecycle.StatusInTransit, lifecycle.StatusConfirmOrderReceived:
		return "transit_media"
	}
	return ""
}

// rulingSummary renders the post-approval state of every line for the
// audit trail.
func rulingSummary(items []entities.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.OutOfStock {
			parts = append(parts, fmt.Sprintf("%s: out of stock", item.SKU))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d approved", item.SKU, item.EffectiveQty()))
	}
	return strings.Join(parts, "; ")
}

func statusChangeHistory(order *entities.Order, to lifecycle.Status, actorID *uint64, comment *string) *entities.OrderHistory {
	return &entities.OrderHistory{
		OrderID:   order.ID,
		UserID:    actorID,
		EventType: entities.HistoryEventStatusChange,
		OldValue:  utils.ToPtr(string(order.Status)),
		NewValue:  utils.ToPtr(string(to)),
		Comment:   comment,
		TxID:      uuid.New(),
	}
}

func newOrderEvent(eventType string, order *entities.Order, to lifecycle.Status, actorID *uint64, recipients events.RecipientSpec) events.OrderEvent {
	return events.OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ActorID:     actorID,
		FromStatus:  string(order.Status),
		ToStatus:    string(to),
		Title:       fmt.Sprintf("Order %s %s", order.OrderNumber, statusPhrase(to)),
		Body:        fmt.Sprintf("Order %s moved from %s to %s.", order.OrderNumber, order.Status, to),
		Recipients:  recipients,
	}
}

// managerRecipients targets the manager who approved the order, or the
// branch's managers while no one has.
func managerRecipients(order *entities.Order) events.RecipientSpec {
	if order.ManagerID != nil {
		return events.RecipientSpec{UserIDs: []uint64{*order.ManagerID}}
	}
	return events.RecipientSpec{BranchID: order.BranchID, BranchRoles: []string{constants.RoleManager}}
}

// requesterAndManager targets the two people carrying the order.
func requesterAndManager(order *entities.Order) events.RecipientSpec {
	spec := managerRecipients(order)
	spec.UserIDs = append(spec.UserIDs, order.RequesterID)
	return spec
}

// movementRecipients keeps warehouse movements quiet except for the
// handovers between teams.
func movementRecipients(order *entities.Order, to lifecycle.Status) events.RecipientSpec {
	switch to {
	case lifecycle.StatusSentForPackaging:
		return managerRecipients(order)
	case lifecycle.StatusPackagingCompleted:
		spec := managerRecipients(order)
		spec.Roles = append(spec.Roles, constants.RoleDispatcher)
		return spec
	}
	return events.RecipientSpec{}
}

func statusPhrase(to lifecycle.Status) string {
	switch to {
	case lifecycle.StatusUnderReview:
		return "submitted for review"
	case lifecycle.StatusConfirmPending:
		return "approved and awaiting confirmation"
	case lifecycle.StatusApprovedOrder:
		return "confirmed"
	case lifecycle.StatusArranging:
		return "is being arranged"
	case lifecycle.StatusArranged:
		return "arranged"
	case lifecycle.StatusSentForPackaging:
		return "sent for packaging"
	case lifecycle.StatusUnderPackaging:
		return "is being packaged"
	case lifecycle.StatusPackagingCompleted:
		return "packaged"
	case lifecycle.StatusInTransit:
		return "dispatched"
	case lifecycle.StatusConfirmOrderReceived:
		return "received"
	case lifecycle.StatusClosedOrder:
		return "closed"
	case lifecycle.StatusRaisedIssue:
		return "has an open issue"
	case lifecycle.StatusWaitingForManagerReply:
		return "is awaiting a manager reply"
	case lifecycle.StatusManagerReplied:
		return "has a manager reply"
	}
	return string(to)
}

// ---- response mapping ----

func toOrderResponseDTO(order *entities.Order) *dto.OrderResponseDTO {
	resp := &dto.OrderResponseDTO{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		Remarks:        order.Remarks,
		TotalItems:     order.TotalItems,
		TotalValue:     order.TotalValue,
		Items:          make([]dto.OrderItemResponseDTO, 0, len(order.Items)),
		ArrangingMedia: emptyIfNil(order.ArrangingMedia),
		PackagingMedia: emptyIfNil(order.PackagingMedia),
		TransitMedia:   emptyIfNil(order.TransitMedia),
		RequestedAt:    order.RequestedAt.Format(timeFormat),
		ApprovedAt:     formatTimePtr(order.ApprovedAt),
		DispatchedAt:   formatTimePtr(order.DispatchedAt),
		ReceivedAt:     formatTimePtr(order.ReceivedAt),
		ClosedAt:       formatTimePtr(order.ClosedAt),
		AutoCloseAt:    formatTimePtr(order.AutoCloseAt),
		CreatedAt:      formatTime(order.CreatedAt),
		UpdatedAt:      formatTime(order.UpdatedAt),
	}
	if order.ArrangingStage != nil {
		resp.ArrangingStage = utils.ToPtr(string(*order.ArrangingStage))
	}
	if order.Branch != nil {
		resp.Branch = dto.ShortBranchDTO{ID: order.Branch.ID, Name: order.Branch.Name, Code: order.Branch.Code}
	}
	if order.Requester != nil {
		resp.Requester = toShortUserDTO(order.Requester)
	}
	if order.Manager != nil {
		resp.Manager = utils.ToPtr(toShortUserDTO(order.Manager))
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponseDTO{
			ID:           item.ID,
			SKU:          item.SKU,
			ItemName:     item.ItemName,
			QtyRequested: item.QtyRequested,
			QtyApproved:  item.QtyApproved,
			QtyReceived:  item.QtyReceived,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
			OutOfStock:   item.OutOfStock,
		})
	}
	if order.Tracking != nil {
		resp.Tracking = &dto.TrackingResponseDTO{
			TrackingID:           order.Tracking.TrackingID,
			CourierLink:          order.Tracking.CourierLink,
			ExpectedDeliveryTime: formatTimePtr(order.Tracking.ExpectedDeliveryTime),
			DeliveredAt:          formatTimePtr(order.Tracking.DeliveredAt),
		}
	}
	return resp
}

func toShortUserDTO(user *entities.User) dto.ShortUserDTO {
	return dto.ShortUserDTO{ID: user.ID, FullName: user.FullName, Role: user.Role}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.ToPtr(t.Format(timeFormat))
}

func emptyIfNil(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}

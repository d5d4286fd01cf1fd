package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/events"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/stockledger"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/contextkeys"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/eventbus"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/types"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/workhours"
)

// fakeTxManager serializes transaction bodies behind a mutex, standing in
// for the row lock that FindOrderForUpdateInTx takes in production. Racing
// callers see each other's committed state, never a half-applied one.
type fakeTxManager struct{ mu sync.Mutex }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(nil)
}

// ---- order store ----

type fakeOrderStore struct {
	mu         sync.Mutex
	nextID     uint64
	nextItemID uint64
	orders     map[uint64]*entities.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uint64]*entities.Order)}
}

// put seeds an order directly, handing out ids the way the database would.
func (s *fakeOrderStore) put(order *entities.Order) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	for i := range order.Items {
		s.nextItemID++
		order.Items[i].ID = s.nextItemID
		order.Items[i].OrderID = order.ID
	}
	now := time.Now()
	order.CreatedAt = &now
	order.UpdatedAt = &now
	s.orders[order.ID] = cloneOrder(order)
	return order.ID
}

func (s *fakeOrderStore) get(t *testing.T, id uint64) *entities.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	require.True(t, ok, "order %d not in store", id)
	return cloneOrder(order)
}

func (s *fakeOrderStore) GetOrders(ctx context.Context, filter types.Filter, scope repositories.OrderScope) ([]entities.Order, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Order
	for id := uint64(1); id <= s.nextID; id++ {
		order, ok := s.orders[id]
		if !ok {
			continue
		}
		if scope.BranchID != nil && order.BranchID != *scope.BranchID {
			continue
		}
		if scope.RequesterID != nil && order.RequesterID != *scope.RequesterID {
			continue
		}
		out = append(out, *cloneOrder(order))
	}
	return out, uint64(len(out)), nil
}

func (s *fakeOrderStore) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (s *fakeOrderStore) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	return s.FindOrder(ctx, id)
}

func (s *fakeOrderStore) CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error) {
	return s.put(order), nil
}

func (s *fakeOrderStore) UpdateOrderInTx(ctx context.Context, tx pgx.Tx, id uint64, patch repositories.OrderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.ArrangingStage != nil {
		order.ArrangingStage = patch.ArrangingStage
	}
	if patch.ClearArrangingStage {
		order.ArrangingStage = nil
	}
	if patch.ManagerID != nil {
		order.ManagerID = patch.ManagerID
	}
	if patch.Remarks != nil {
		order.Remarks = patch.Remarks
	}
	if patch.TotalItems != nil {
		order.TotalItems = *patch.TotalItems
	}
	if patch.TotalValue != nil {
		order.TotalValue = *patch.TotalValue
	}
	if patch.ApprovedAt != nil {
		order.ApprovedAt = patch.ApprovedAt
	}
	if patch.ArrangingStartedAt != nil {
		order.ArrangingStartedAt = patch.ArrangingStartedAt
	}
	if patch.ArrangingCompletedAt != nil {
		order.ArrangingCompletedAt = patch.ArrangingCompletedAt
	}
	if patch.SentForPackagingAt != nil {
		order.SentForPackagingAt = patch.SentForPackagingAt
	}
	if patch.PackagingStartedAt != nil {
		order.PackagingStartedAt = patch.PackagingStartedAt
	}
	if patch.PackagingCompletedAt != nil {
		order.PackagingCompletedAt = patch.PackagingCompletedAt
	}
	if patch.DispatchedAt != nil {
		order.DispatchedAt = patch.DispatchedAt
	}
	if patch.ReceivedAt != nil {
		order.ReceivedAt = patch.ReceivedAt
	}
	if patch.ClosedAt != nil {
		order.ClosedAt = patch.ClosedAt
	}
	if patch.AutoCloseAt != nil {
		order.AutoCloseAt = patch.AutoCloseAt
	}
	if patch.ExpectedDeliveryTime != nil {
		order.ExpectedDeliveryTime = patch.ExpectedDeliveryTime
	}
	now := time.Now()
	order.UpdatedAt = &now
	return nil
}

func (s *fakeOrderStore) UpdateItemApprovalInTx(ctx context.Context, tx pgx.Tx, orderID uint64, item entities.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range order.Items {
		if order.Items[i].SKU != item.SKU {
			continue
		}
		order.Items[i].QtyApproved = item.QtyApproved
		order.Items[i].OutOfStock = item.OutOfStock
		order.Items[i].UnitPrice = item.UnitPrice
		order.Items[i].TotalPrice = item.TotalPrice
		return nil
	}
	return apperrors.ErrNotFound
}

func (s *fakeOrderStore) SetReceivedQuantitiesInTx(ctx context.Context, tx pgx.Tx, orderID uint64, received map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for sku, qty := range received {
		found := false
		for i := range order.Items {
			if order.Items[i].SKU == sku {
				order.Items[i].QtyReceived = utils.ToPtr(qty)
				found = true
				break
			}
		}
		if !found {
			return apperrors.ErrNotFound
		}
	}
	// Unnamed lines default to their effective quantity.
	for i := range order.Items {
		if order.Items[i].QtyReceived == nil {
			order.Items[i].QtyReceived = utils.ToPtr(order.Items[i].EffectiveQty())
		}
	}
	return nil
}

func (s *fakeOrderStore) AppendMediaInTx(ctx context.Context, tx pgx.Tx, orderID uint64, column string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return apperrors.ErrNotFound
	}
	switch column {
	case "arranging_media":
		order.ArrangingMedia = append(order.ArrangingMedia, paths...)
	case "packaging_media":
		order.PackagingMedia = append(order.PackagingMedia, paths...)
	case "transit_media":
		order.TransitMedia = append(order.TransitMedia, paths...)
	default:
		return fmt.Errorf("unknown media column %q", column)
	}
	return nil
}

func (s *fakeOrderStore) FindItems(ctx context.Context, q repositories.Querier, orderID uint64) ([]entities.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	items := make([]entities.OrderItem, len(order.Items))
	copy(items, order.Items)
	return items, nil
}

func (s *fakeOrderStore) FindDueForAutoClose(ctx context.Context, now time.Time, limit uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []uint64
	for id := uint64(1); id <= s.nextID && uint64(len(due)) < limit; id++ {
		order, ok := s.orders[id]
		if !ok {
			continue
		}
		if order.Status == lifecycle.StatusConfirmOrderReceived &&
			order.AutoCloseAt != nil && !order.AutoCloseAt.After(now) {
			due = append(due, id)
		}
	}
	return due, nil
}

// cloneOrder copies the aggregate the way a fresh database read would.
// Pointer targets are shared because the services replace pointers, they
// never write through them.
func cloneOrder(o *entities.Order) *entities.Order {
	out := *o
	out.Items = make([]entities.OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	out.ArrangingMedia = append([]string(nil), o.ArrangingMedia...)
	out.PackagingMedia = append([]string(nil), o.PackagingMedia...)
	out.TransitMedia = append([]string(nil), o.TransitMedia...)
	if o.Tracking != nil {
		tracking := *o.Tracking
		out.Tracking = &tracking
	}
	return &out
}

// ---- history log ----

type fakeHistoryLog struct {
	mu   sync.Mutex
	rows []entities.OrderHistory
}

func (l *fakeHistoryLog) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.OrderHistory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := *history
	row.ID = uint64(len(l.rows) + 1)
	row.CreatedAt = time.Now()
	l.rows = append(l.rows, row)
	return nil
}

func (l *fakeHistoryLog) FindByOrderID(ctx context.Context, orderID uint64) ([]repositories.OrderHistoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []repositories.OrderHistoryItem
	for _, row := range l.rows {
		if row.OrderID == orderID {
			out = append(out, repositories.OrderHistoryItem{OrderHistory: row})
		}
	}
	return out, nil
}

func (l *fakeHistoryLog) byType(orderID uint64, eventType string) []entities.OrderHistory {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entities.OrderHistory
	for _, row := range l.rows {
		if row.OrderID == orderID && row.EventType == eventType {
			out = append(out, row)
		}
	}
	return out
}

// ---- tracking store ----

type fakeTrackingStore struct {
	mu   sync.Mutex
	rows map[uint64]*entities.Tracking
}

func newFakeTrackingStore() *fakeTrackingStore {
	return &fakeTrackingStore{rows: make(map[uint64]*entities.Tracking)}
}

func (s *fakeTrackingStore) UpsertInTx(ctx context.Context, tx pgx.Tx, tracking *entities.Tracking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *tracking
	if existing, ok := s.rows[tracking.OrderID]; ok {
		row.ID = existing.ID
		row.DeliveredAt = existing.DeliveredAt
	} else {
		row.ID = uint64(len(s.rows) + 1)
	}
	s.rows[tracking.OrderID] = &row
	return nil
}

func (s *fakeTrackingStore) MarkDeliveredInTx(ctx context.Context, tx pgx.Tx, orderID uint64, deliveredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[orderID]; ok {
		row.DeliveredAt = &deliveredAt
	}
	return nil
}

func (s *fakeTrackingStore) FindByOrderID(ctx context.Context, orderID uint64) (*entities.Tracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[orderID]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

// ---- branch directory ----

type fakeBranchDirectory struct {
	mu       sync.Mutex
	branches map[uint64]entities.Branch
}

func newFakeBranchDirectory() *fakeBranchDirectory {
	return &fakeBranchDirectory{branches: make(map[uint64]entities.Branch)}
}

func (d *fakeBranchDirectory) add(branch entities.Branch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.branches[branch.ID] = branch
}

func (d *fakeBranchDirectory) FindBranch(ctx context.Context, id uint64) (*entities.Branch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	branch, ok := d.branches[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &branch, nil
}

// ---- issue store ----

type fakeIssueStore struct {
	mu       sync.Mutex
	rows     []entities.OrderIssue
	received []entities.ReceivedIssue
}

func (s *fakeIssueStore) CreateInTx(ctx context.Context, tx pgx.Tx, issue *entities.OrderIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *issue
	row.ID = uint64(len(s.rows) + 1)
	row.CreatedAt = time.Now()
	s.rows = append(s.rows, row)
	return nil
}

func (s *fakeIssueStore) FindByOrderID(ctx context.Context, orderID uint64) ([]repositories.IssueConversationItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.IssueConversationItem
	for _, row := range s.rows {
		if row.OrderID == orderID {
			out = append(out, repositories.IssueConversationItem{OrderIssue: row})
		}
	}
	return out, nil
}

func (s *fakeIssueStore) CreateReceivedInTx(ctx context.Context, tx pgx.Tx, issue *entities.ReceivedIssue) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := *issue
	row.ID = uint64(len(s.received) + 1)
	row.CreatedAt = time.Now()
	s.received = append(s.received, row)
	return row.ID, nil
}

func (s *fakeIssueStore) FindReceivedByOrderID(ctx context.Context, orderID uint64) ([]repositories.ReceivedIssueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repositories.ReceivedIssueItem
	for _, row := range s.received {
		if row.OrderID == orderID {
			out = append(out, repositories.ReceivedIssueItem{ReceivedIssue: row})
		}
	}
	return out, nil
}

func (s *fakeIssueStore) conversation(orderID uint64) []entities.OrderIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.OrderIssue
	for _, row := range s.rows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out
}

// ---- stock ledger ----

type fakeStockLedger struct {
	mu    sync.Mutex
	items map[string]entities.CatalogItem
}

func newFakeStockLedger() *fakeStockLedger {
	return &fakeStockLedger{items: make(map[string]entities.CatalogItem)}
}

func (l *fakeStockLedger) add(item entities.CatalogItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[item.SKU] = item
}

func (l *fakeStockLedger) stock(sku string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[sku].Stock
}

func (l *fakeStockLedger) FindBySKU(ctx context.Context, sku string) (*entities.CatalogItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[sku]
	if !ok {
		return nil, fmt.Errorf("%w: %s", stockledger.ErrUnknownSKU, sku)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: %s", stockledger.ErrInactiveSKU, sku)
	}
	return &item, nil
}

func (l *fakeStockLedger) Reserve(ctx context.Context, sku string, qty int64) (*entities.CatalogItem, error) {
	item, err := l.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item.Stock > 0 && item.Stock < qty {
		return nil, &stockledger.InsufficientStockError{SKU: sku, Requested: qty, Available: item.Stock}
	}
	return item, nil
}

func (l *fakeStockLedger) Deduct(ctx context.Context, sku string, qty int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[sku]
	if !ok {
		return fmt.Errorf("%w: %s", stockledger.ErrUnknownSKU, sku)
	}
	if item.Stock < qty {
		return fmt.Errorf("%w: %s", stockledger.ErrInsufficientStock, sku)
	}
	item.Stock -= qty
	l.items[sku] = item
	return nil
}

// ---- fixture ----

const (
	branchRiverside = uint64(1)
	branchHillside  = uint64(2)

	requesterID = uint64(10)
	managerID   = uint64(20)
	adminID     = uint64(30)
	packagerID  = uint64(40)
	courierID   = uint64(50)
)

// lifecycleFixture wires both services onto the in-memory fakes with a
// shared transaction mutex and a real event bus.
type lifecycleFixture struct {
	t        *testing.T
	orders   *fakeOrderStore
	history  *fakeHistoryLog
	tracking *fakeTrackingStore
	branches *fakeBranchDirectory
	issues   *fakeIssueStore
	ledger   *fakeStockLedger
	calendar workhours.Calendar
	events   chan events.OrderEvent

	orderSvc OrderServiceInterface
	issueSvc IssueServiceInterface
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	f := &lifecycleFixture{
		t:        t,
		orders:   newFakeOrderStore(),
		history:  &fakeHistoryLog{},
		tracking: newFakeTrackingStore(),
		branches: newFakeBranchDirectory(),
		issues:   &fakeIssueStore{},
		ledger:   newFakeStockLedger(),
		calendar: workhours.Default(),
		events:   make(chan events.OrderEvent, 32),
	}

	f.branches.add(entities.Branch{ID: branchRiverside, Name: "Riverside", Code: "BR-01", IsActive: true})
	f.branches.add(entities.Branch{ID: branchHillside, Name: "Hillside", Code: "BR-02", IsActive: true})
	f.ledger.add(entities.CatalogItem{SKU: "PAPER-A4-80", Name: "Copy paper A4 80g", Stock: 500, UnitPrice: 6500, IsActive: true})
	f.ledger.add(entities.CatalogItem{SKU: "PEN-BLUE-05", Name: "Ballpoint pen blue", Stock: 1200, UnitPrice: 150, IsActive: true})
	f.ledger.add(entities.CatalogItem{SKU: "TONER-HP85A", Name: "Toner cartridge 85A", Stock: 0, UnitPrice: 52000, IsActive: true})
	f.ledger.add(entities.CatalogItem{SKU: "LAMP-DESK-LED", Name: "Desk lamp LED", Stock: 25, UnitPrice: 12500, IsActive: false})

	bus := eventbus.New(zap.NewNop())
	bus.Subscribe(events.TopicOrderTransitioned, func(_ context.Context, e eventbus.Event) error {
		if orderEvent, ok := e.(events.OrderEvent); ok {
			f.events <- orderEvent
		}
		return nil
	})

	tx := &fakeTxManager{}
	logger := zap.NewNop()
	f.orderSvc = NewOrderService(tx, f.orders, f.tracking, f.history, f.branches, f.ledger, bus, f.calendar, 56, logger)
	f.issueSvc = NewIssueService(tx, f.orders, f.issues, f.history, f.ledger, bus, logger)
	return f
}

// seedOrder plants an order mid-lifecycle: branch Riverside, a priced
// paper line and an out-of-stock toner line. Orders past review carry
// the manager's ruling (paper trimmed to 8), matching what ApproveOrder
// would have written.
func (f *lifecycleFixture) seedOrder(status lifecycle.Status, mutate ...func(*entities.Order)) uint64 {
	f.t.Helper()
	now := time.Now()
	order := &entities.Order{
		OrderNumber: utils.GenerateOrderNumber(constants.OrderNumberPrefix),
		Status:      status,
		BranchID:    branchRiverside,
		RequesterID: requesterID,
		TotalItems:  12,
		TotalValue:  65000,
		RequestedAt: now,
		Items: []entities.OrderItem{
			{
				SKU:          "PAPER-A4-80",
				ItemName:     "Copy paper A4 80g",
				QtyRequested: 10,
				UnitPrice:    utils.ToPtr(int64(6500)),
				TotalPrice:   utils.ToPtr(int64(65000)),
			},
			{
				SKU:          "TONER-HP85A",
				ItemName:     "Toner cartridge 85A",
				QtyRequested: 2,
				OutOfStock:   true,
			},
		},
	}
	if status != lifecycle.StatusUnderReview {
		order.ManagerID = utils.ToPtr(managerID)
		order.ApprovedAt = &now
		order.TotalValue = 52000
		order.Items[0].QtyApproved = utils.ToPtr(int64(8))
		order.Items[0].TotalPrice = utils.ToPtr(int64(52000))
		order.Items[1].QtyApproved = utils.ToPtr(int64(2))
	}
	for _, fn := range mutate {
		fn(order)
	}
	return f.orders.put(order)
}

func (f *lifecycleFixture) expectEvent(eventType string) events.OrderEvent {
	f.t.Helper()
	select {
	case e := <-f.events:
		require.Equal(f.t, eventType, e.EventType)
		return e
	case <-time.After(2 * time.Second):
		f.t.Fatalf("no %s event published", eventType)
		return events.OrderEvent{}
	}
}

func (f *lifecycleFixture) drainEvents() {
	for {
		select {
		case <-f.events:
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

// ---- notification inbox ----

type fakeNotificationInbox struct {
	mu   sync.Mutex
	rows []entities.Notification
}

func newFakeNotificationInbox() *fakeNotificationInbox {
	return &fakeNotificationInbox{}
}

func (i *fakeNotificationInbox) CreateBatch(ctx context.Context, notifications []entities.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, n := range notifications {
		n.ID = uint64(len(i.rows) + 1)
		i.rows = append(i.rows, n)
	}
	return nil
}

func (i *fakeNotificationInbox) GetByUserID(ctx context.Context, userID uint64, filter types.Filter) ([]entities.Notification, uint64, uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var out []entities.Notification
	var total, unread uint64
	// Newest first, like the ORDER BY created_at DESC, id DESC query.
	for idx := len(i.rows) - 1; idx >= 0; idx-- {
		n := i.rows[idx]
		if n.UserID != userID {
			continue
		}
		total++
		if !n.IsRead {
			unread++
		}
		if filter.Limit == 0 || len(out) < filter.Limit {
			out = append(out, n)
		}
	}
	return out, total, unread, nil
}

func (i *fakeNotificationInbox) MarkRead(ctx context.Context, userID uint64, id uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range i.rows {
		if i.rows[idx].ID == id && i.rows[idx].UserID == userID {
			i.rows[idx].IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// ---- actors ----

func asBranchUser(userID, branchID uint64) context.Context {
	return asActor(&dto.UserClaims{UserID: userID, Role: constants.RoleBranchUser, BranchID: &branchID})
}

func asManager(userID, branchID uint64) context.Context {
	return asActor(&dto.UserClaims{UserID: userID, Role: constants.RoleManager, BranchID: &branchID})
}

func asAdmin(userID uint64) context.Context {
	return asActor(&dto.UserClaims{UserID: userID, Role: constants.RoleAdmin})
}

func asPackager(userID uint64) context.Context {
	return asActor(&dto.UserClaims{UserID: userID, Role: constants.RolePackager})
}

func asDispatcher(userID uint64) context.Context {
	return asActor(&dto.UserClaims{UserID: userID, Role: constants.RoleDispatcher})
}

func asActor(claims *dto.UserClaims) context.Context {
	return context.WithValue(context.Background(), contextkeys.ActorKey, claims)
}

// ---- error helpers ----

func requireHTTPCode(t *testing.T, err error, code int) *apperrors.HttpError {
	t.Helper()
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr, "expected an HttpError, got %v", err)
	require.Equal(t, code, httpErr.Code, "unexpected status for %v", err)
	return httpErr
}

func requireInvalidInput(t *testing.T, err error, fragment string) {
	t.Helper()
	var invalidErr *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidErr, "expected an InvalidInputError, got %v", err)
	require.Contains(t, invalidErr.Message, fragment)
}

package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/events"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/eventbus"
)

// recipientCacheTTL bounds how stale the cached directory lookups may
// get. A user added to a role waits at most this long for fan-out.
const recipientCacheTTL = 5 * time.Minute

// NotificationListener persists one inbox row per recipient after a
// transition commits. It runs on the bus, outside the transaction, so a
// failure here is logged and never rolls the transition back.
type NotificationListener struct {
	notificationRepo repositories.NotificationRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	cache            repositories.CacheRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationListener(
	notificationRepo repositories.NotificationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		cache:            cache,
		logger:           logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TopicOrderTransitioned, l.handleOrderTransitioned)
}

func (l *NotificationListener) handleOrderTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderEvent)
	if !ok {
		return nil
	}

	ids, err := l.resolveRecipients(ctx, e.Recipients)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients for order %d: %w", e.OrderID, err)
	}
	if len(ids) == 0 {
		return nil
	}

	orderID := e.OrderID
	notifications := make([]entities.Notification, 0, len(ids))
	for _, id := range ids {
		notifications = append(notifications, entities.Notification{
			UserID:    id,
			OrderID:   &orderID,
			EventType: e.EventType,
			Title:     e.Title,
			Body:      e.Body,
		})
	}
	if err := l.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("failed to persist notifications for order %d: %w", e.OrderID, err)
	}

	l.logger.Debug("notifications delivered",
		zap.Uint64("order_id", e.OrderID),
		zap.String("event", e.EventType),
		zap.Int("recipients", len(notifications)))
	return nil
}

// resolveRecipients expands a recipient spec into a deduplicated id
// list. Role and branch directory lookups go through the redis cache.
func (l *NotificationListener) resolveRecipients(ctx context.Context, spec events.RecipientSpec) ([]uint64, error) {
	seen := make(map[uint64]struct{})
	add := func(ids []uint64) {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}

	add(spec.UserIDs)

	if spec.AllActive {
		ids, err := l.cachedIDs(ctx, constants.CacheKeyActiveRecipients, l.userRepo.FindActiveIDs)
		if err != nil {
			return nil, err
		}
		add(ids)
	}
	for _, role := range spec.Roles {
		role := role
		key := fmt.Sprintf(constants.CacheKeyRoleRecipients, role)
		ids, err := l.cachedIDs(ctx, key, func(ctx context.Context) ([]uint64, error) {
			return l.userRepo.FindIDsByRole(ctx, role)
		})
		if err != nil {
			return nil, err
		}
		add(ids)
	}
	if spec.BranchID != 0 {
		for _, role := range spec.BranchRoles {
			role := role
			key := fmt.Sprintf(constants.CacheKeyBranchRoleRecipients, spec.BranchID, role)
			ids, err := l.cachedIDs(ctx, key, func(ctx context.Context) ([]uint64, error) {
				return l.userRepo.FindIDsByBranchRole(ctx, spec.BranchID, role)
			})
			if err != nil {
				return nil, err
			}
			add(ids)
		}
	}

	for _, id := range spec.ExcludeUserIDs {
		delete(seen, id)
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// cachedIDs serves an id list from redis, falling back to the loader on
// a miss or an unreadable value. Cache write failures are logged only;
// the directory stays authoritative.
func (l *NotificationListener) cachedIDs(ctx context.Context, key string, load func(context.Context) ([]uint64, error)) ([]uint64, error) {
	if raw, err := l.cache.Get(ctx, key); err == nil && raw != "" {
		var ids []uint64
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return ids, nil
		}
		l.logger.Warn("discarding unreadable recipient cache entry", zap.String("key", key))
	}

	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(ids)
	if err == nil {
		if err := l.cache.Set(ctx, key, encoded, recipientCacheTTL); err != nil {
			l.logger.Warn("failed to cache recipient ids", zap.String("key", key), zap.Error(err))
		}
	}
	return ids, nil
}

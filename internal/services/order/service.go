package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

// MutateFunc inspects and modifies an order while its row is locked.
// Returning an error aborts the mutation without writing anything;
// itemsChanged reports whether the item set must be rewritten.
type MutateFunc func(order *models.Order) (itemsChanged bool, err error)

// Repository defines the storage operations the order service relies on.
// Mutate runs the whole read-check-write sequence in one transaction with
// the order row locked, so concurrent mutations serialize and every guard
// is evaluated against the committed state, never a stale snapshot.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*models.Order, error)
}

// DishLookup resolves dish ids to their current prices. Orders keep no
// historical price snapshot; recomputation always uses current prices.
type DishLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Dish, error)
}

// UserLookup checks that an owner override points at an existing account.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// EventPublisher emits order lifecycle events after a mutation commits.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventMsg interface{}, routingKey string) error
	PublishNotification(ctx context.Context, notificationMsg interface{}) error
}

// Service orchestrates order creation, updates and the status lifecycle,
// enforcing the ownership policy and keeping the stored total in sync with
// the item set.
type Service struct {
	repo      Repository
	dishes    DishLookup
	users     UserLookup
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new order service
func NewService(repo Repository, dishes DishLookup, users UserLookup, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		dishes:    dishes,
		users:     users,
		publisher: publisher,
		logger:    log,
	}
}

// ListOrders returns every order for administrators and only the caller's
// own orders otherwise, newest first.
func (s *Service) ListOrders(ctx context.Context, caller models.Caller) ([]models.Order, error) {
	if caller.IsAdmin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, caller.ID)
}

// ListOwnOrders returns the caller's orders regardless of the admin flag
// (the dedicated "meus-pedidos" listing).
func (s *Service) ListOwnOrders(ctx context.Context, caller models.Caller) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, caller.ID)
}

// GetOrder fetches one order, applying the same visibility scoping as
// ListOrders: a non-administrator asking for somebody else's order gets
// NotFound, not PermissionDenied.
func (s *Service) GetOrder(ctx context.Context, caller models.Caller, id int64) (*models.Order, error) {
	ord, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scopeCheck(caller, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// scopeCheck hides other users' orders from non-administrators.
func scopeCheck(caller models.Caller, ord *models.Order) error {
	if !caller.IsAdmin && ord.UserID != caller.ID {
		return models.ErrNotFound
	}
	return nil
}

// CreateOrder creates a pending order owned by the caller. The owner can
// be overridden only by administrators; the dish set must be non-empty and
// fully resolvable. The total is computed here, before persisting, so the
// stored row never carries a stale value.
func (s *Service) CreateOrder(ctx context.Context, caller models.Caller, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	if len(req.DishIDs) == 0 {
		return nil, models.ErrEmptyOrder
	}

	dishIDs := dedupe(req.DishIDs)
	total, err := s.resolveTotal(ctx, dishIDs)
	if err != nil {
		return nil, err
	}

	ownerID := caller.ID
	if req.UserID != nil && caller.IsAdmin {
		owner, err := s.users.GetByID(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		ownerID = owner.ID
	}

	ord := &models.Order{
		UserID:  ownerID,
		DishIDs: dishIDs,
		Total:   total,
		Status:  models.StatusPending,
	}
	if err := s.repo.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d created", ord.ID), requestID, map[string]interface{}{
		"order_id": ord.ID,
		"usuario":  ord.UserID,
		"total":    ord.Total.String(),
	})
	s.publishEvent(ctx, ord, "", caller.Username, requestID)

	return ord, nil
}

// UpdateOrder applies a partial update to an order: an item-set change
// triggers a total recomputation, a status change is validated against the
// transition rules. Policy checks and validation run inside the mutation
// transaction, against the locked row. An item-set update may empty the
// order; the at-least-one-dish rule applies only at creation.
func (s *Service) UpdateOrder(ctx context.Context, caller models.Caller, id int64, req *models.UpdateOrderRequest, requestID string) (*models.Order, error) {
	var oldStatus models.OrderStatus
	ord, err := s.repo.Mutate(ctx, id, func(ord *models.Order) (bool, error) {
		if err := scopeCheck(caller, ord); err != nil {
			return false, err
		}
		if !models.CanAccess(caller, ord, models.AccessWrite) {
			return false, models.ErrPermissionDenied
		}

		oldStatus = ord.Status
		if req.Status != nil {
			next, err := models.ParseStatus(*req.Status)
			if err != nil {
				return false, err
			}
			if err := models.ValidateTransition(ord.Status, next); err != nil {
				return false, err
			}
			ord.Status = next
		}

		if req.DishIDs != nil {
			dishIDs := dedupe(*req.DishIDs)
			total, err := s.resolveTotal(ctx, dishIDs)
			if err != nil {
				return false, err
			}
			ord.DishIDs = dishIDs
			ord.Total = total
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_updated", fmt.Sprintf("Order %d updated", ord.ID), requestID, map[string]interface{}{
		"order_id": ord.ID,
		"status":   string(ord.Status),
		"total":    ord.Total.String(),
	})
	if ord.Status != oldStatus {
		s.publishEvent(ctx, ord, oldStatus, caller.Username, requestID)
	}

	return ord, nil
}

// CancelOrder transitions an order to cancelled, surfacing the dedicated
// guard errors instead of a generic validation failure. The order is left
// untouched when a guard fires.
func (s *Service) CancelOrder(ctx context.Context, caller models.Caller, id int64, requestID string) (*models.Order, error) {
	var oldStatus models.OrderStatus
	ord, err := s.repo.Mutate(ctx, id, func(ord *models.Order) (bool, error) {
		if err := scopeCheck(caller, ord); err != nil {
			return false, err
		}
		if !models.CanAccess(caller, ord, models.AccessWrite) {
			return false, models.ErrPermissionDenied
		}
		if err := models.ValidateTransition(ord.Status, models.StatusCancelled); err != nil {
			return false, err
		}

		oldStatus = ord.Status
		ord.Status = models.StatusCancelled
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_cancelled", fmt.Sprintf("Order %d cancelled", ord.ID), requestID, map[string]interface{}{
		"order_id": ord.ID,
		"usuario":  ord.UserID,
	})
	s.publishEvent(ctx, ord, oldStatus, caller.Username, requestID)

	return ord, nil
}

// resolveTotal resolves the dish set and sums current prices. Any id that
// does not resolve to an existing dish fails the whole operation.
func (s *Service) resolveTotal(ctx context.Context, dishIDs []int64) (decimal.Decimal, error) {
	if len(dishIDs) == 0 {
		return decimal.Zero, nil
	}

	dishes, err := s.dishes.GetByIDs(ctx, dishIDs)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve dishes: %w", err)
	}
	if len(dishes) != len(dishIDs) {
		return decimal.Zero, models.ErrDishNotFound
	}

	prices := make([]decimal.Decimal, 0, len(dishes))
	for _, d := range dishes {
		prices = append(prices, d.Price)
	}
	return models.OrderTotal(prices), nil
}

// publishEvent emits the lifecycle event after the mutation committed.
// Publishing failures are logged and swallowed: the order state is already
// durable and notifications are best effort.
func (s *Service) publishEvent(ctx context.Context, ord *models.Order, oldStatus models.OrderStatus, changedBy, requestID string) {
	if s.publisher == nil {
		return
	}

	msg := models.NewOrderEventMessage(ord, oldStatus, changedBy)
	if err := s.publisher.PublishOrderEvent(ctx, msg, models.OrderEventRoutingKey(ord.Status)); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", requestID, err, map[string]interface{}{
			"order_id": ord.ID,
		})
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish notification", requestID, err, map[string]interface{}{
			"order_id": ord.ID,
		})
	}
}

// dedupe drops duplicate dish ids while keeping the first occurrence order
// (an order never holds the same dish twice).
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/notify"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
)

type Store interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, f repository.OrderFilter) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id string, u repository.StatusUpdate) error
}

type Cache interface {
	CacheOrder(ctx context.Context, o *models.Order) error
	GetOrderCache(ctx context.Context, id string) (*models.Order, error)
	InvalidateOrder(ctx context.Context, id string) error
}

type Notifier interface {
	RecordActivity(service, action, entityID, actor string, data map[string]interface{})
	SendEmail(email *notify.Email, reason string)
}

// StatusChange is an administrative request to move an order forward.
// Carrier and TrackingNumber are only stored when entering shipped.
type StatusChange struct {
	Status         string
	Carrier        string
	TrackingNumber string
	Actor          string
}

type Page struct {
	Orders   []models.Order `json:"orders"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type Service struct {
	store    Store
	cache    Cache
	notifier Notifier
	logger   *zap.Logger
}

// NewService wires the order administration operations. cache and notifier
// may be nil.
func NewService(store Store, cache Cache, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		logger:   logger.Named("orders"),
	}
}

// Get returns the order with its items, served from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	if s.cache != nil {
		if o, err := s.cache.GetOrderCache(ctx, id); err == nil {
			return o, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("Order cache read failed", zap.String("order_id", id), zap.Error(err))
		}
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheOrder(ctx, o); err != nil {
			s.logger.Warn("Failed to cache order", zap.String("order_id", id), zap.Error(err))
		}
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f repository.OrderFilter) (*Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	f.Page, f.PageSize = repository.NormalizePage(f.Page, f.PageSize)
	orders, total, err := s.store.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &Page{Orders: orders, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

// UpdateStatus applies one step of the order lifecycle. Moves not listed in
// the transition table, including same-state updates, fail with
// ErrIllegalTransition.
func (s *Service) UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.Order, error) {
	next, err := models.ParseOrderStatus(change.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, change.Status)
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := order.Status
	if !prev.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, prev, next)
	}

	update := repository.StatusUpdate{From: prev, To: next}
	if next == models.OrderStatusShipped {
		update.Carrier = strings.TrimSpace(change.Carrier)
		update.TrackingNumber = strings.TrimSpace(change.TrackingNumber)
	}
	if err := s.store.UpdateOrderStatus(ctx, id, update); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %s changed concurrently", ErrIllegalTransition, id)
		}
		return nil, err
	}
	s.invalidate(ctx, id)

	now := time.Now()
	order.Status = next
	order.UpdatedAt = now
	if next == models.OrderStatusShipped {
		if update.Carrier != "" {
			order.Carrier = update.Carrier
		}
		if update.TrackingNumber != "" {
			order.TrackingNumber = update.TrackingNumber
		}
		order.ShippedAt = &now
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
		zap.String("actor", change.Actor))

	if s.notifier != nil {
		data := map[string]interface{}{"from": prev.String(), "to": next.String()}
		if next == models.OrderStatusShipped {
			data["carrier"] = order.Carrier
			data["tracking_number"] = order.TrackingNumber
		}
		s.notifier.RecordActivity("orders", "status_changed", id, change.Actor, data)

		if next == models.OrderStatusShipped {
			email, err := notify.ShippedEmail(order)
			if err != nil {
				s.logger.Warn("Failed to render shipped email", zap.String("order_id", id), zap.Error(err))
			} else {
				s.notifier.SendEmail(email, "order_shipped")
			}
		}
	}
	return order, nil
}

// MarkPaid records an approved payment for a pending order. It reports
// false without error when the order had already left pending.
func (s *Service) MarkPaid(ctx context.Context, id, paymentID string) (bool, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if order.Status != models.OrderStatusPending {
		s.logger.Info("Payment notification for non-pending order ignored",
			zap.String("order_id", id),
			zap.String("status", order.Status.String()),
			zap.String("payment_id", paymentID))
		return false, nil
	}

	err = s.store.UpdateOrderStatus(ctx, id, repository.StatusUpdate{
		From:      models.OrderStatusPending,
		To:        models.OrderStatusPaid,
		PaymentID: paymentID,
	})
	if errors.Is(err, repository.ErrStatusConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, id)

	s.logger.Info("Order paid", zap.String("order_id", id), zap.String("payment_id", paymentID))
	if s.notifier != nil {
		s.notifier.RecordActivity("payments", "payment_approved", id, "mercadopago", map[string]interface{}{
			"payment_id": paymentID,
		})
	}
	return true, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, err
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOrder(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate order cache", zap.String("order_id", id), zap.Error(err))
	}
}

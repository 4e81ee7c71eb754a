package service

import (
	"context"
	"fmt"
	"time"

	"food-court/internal/common/logger"
	"food-court/internal/domain"
	"food-court/internal/orders/repository"
)

type OrderService struct {
	repo repository.Orders
	lg   *logger.Logger
	now  func() time.Time
}

func NewOrderService(repo repository.Orders, lg *logger.Logger) *OrderService {
	return &OrderService{repo: repo, lg: lg, now: time.Now}
}

func (s *OrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	o := &domain.Order{
		VenueID:     req.VenueID,
		StallID:     req.StallID,
		UserID:      req.UserID,
		TableNumber: req.TableNumber,
	}
	for _, it := range req.Items {
		o.Items = append(o.Items, domain.OrderItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Modifiers:  it.Modifiers,
		})
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.lg.Info("order_created", map[string]any{"order_id": o.ID, "user_id": o.UserID})
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ApplyTransition validates and commits one status transition.
//
// It returns (nil, nil) when requested equals the current status: the call
// is an idempotent success and nothing may be dispatched for it. On a real
// transition the write is a single-row compare-and-set keyed on the status
// this call observed; if another writer got there first the caller receives
// domain.ErrConflict and must retry with freshly read state — the service
// never retries on its own. Fan-out is the caller's job, strictly after
// this returns: no notification may ever describe a transition that did
// not commit.
func (s *OrderService) ApplyTransition(ctx context.Context, orderID int64, requested domain.Status) (*domain.StatusUpdate, error) {
	if !requested.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, requested)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	current := o.Status

	if requested == current {
		s.lg.Debug("transition_noop", map[string]any{"order_id": orderID, "status": current.String()})
		return nil, nil
	}
	if !current.CanTransitionTo(requested) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current, requested)
	}

	at := s.now().UTC()
	ok, err := s.repo.UpdateStatusCAS(ctx, orderID, current, requested, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No row matched: either a concurrent writer moved the status, or
		// the order is gone. Re-read to tell which.
		if _, err := s.repo.GetByID(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order %d no longer %s", domain.ErrConflict, orderID, current)
	}

	s.lg.Info("status_committed", map[string]any{
		"order_id": orderID, "from": current.String(), "to": requested.String(),
	})
	return &domain.StatusUpdate{
		OrderID:   orderID,
		OldStatus: current,
		NewStatus: requested,
		Timestamp: at,
	}, nil
}

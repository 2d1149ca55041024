package services

import (
	"context"
	"errors"

	"storefront/models"
	"storefront/repositories"

	"github.com/google/uuid"
)

type OrderService struct {
	sessions SessionProvider
	orders   OrderStore
}

func NewOrderService(sessions SessionProvider, orders OrderStore) *OrderService {
	return &OrderService{sessions: sessions, orders: orders}
}

func (s *OrderService) currentUser(ctx context.Context) (string, error) {
	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrLoginRequired
	}
	return session.UserID, nil
}

// List returns the caller's orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, userID)
}

// Cancel moves one of the caller's orders to cancelled. Orders that are
// already cancelled or delivered are rejected with ErrOrderNotCancellable
// rather than treated as a no-op.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orders.FindForUser(ctx, userID, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, ErrOrderNotCancellable
	}

	cancelled, err := s.orders.UpdateStatus(ctx, userID, orderID, order.Status, models.OrderStatusCancelled)
	if errors.Is(err, repositories.ErrNotFound) {
		// status changed between the read and the update
		return nil, ErrOrderNotCancellable
	}
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

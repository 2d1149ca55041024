package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storefront/models"
)

// OrderStore is the backend that creates, reads and updates orders.
type OrderStore interface {
	Create(ctx context.Context, order models.NewOrder) (*models.Order, error)
	FindForUser(ctx context.Context, userID, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID, from, to string) (*models.Order, error)
}

type OrderNotifier interface {
	OrderConfirmed(toEmail string, order *models.Order) error
}

// CheckoutService is the single place where cart contents are checked
// against live stock. Stock is read, then the order is written, with no
// reservation in between: a concurrent purchase can still oversell.
type CheckoutService struct {
	sessions SessionProvider
	stock    StockOracle
	orders   OrderStore
	notifier OrderNotifier
	logger   *slog.Logger
}

func NewCheckoutService(sessions SessionProvider, stock StockOracle, orders OrderStore, notifier OrderNotifier, logger *slog.Logger) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		sessions: sessions,
		stock:    stock,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
	}
}

// StockLimits fetches a fresh snapshot for the products in items.
func (s *CheckoutService) StockLimits(ctx context.Context, items []models.LineItem) (models.StockSnapshot, error) {
	if len(items) == 0 {
		return models.StockSnapshot{}, nil
	}
	snapshot, err := s.stock.StockFor(ctx, DistinctProductIDs(items))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock: %w", err)
	}
	return snapshot, nil
}

// Validate reports the shortages of the cart as it is now.
func (s *CheckoutService) Validate(ctx context.Context, cart *CartStore) ([]models.StockShortage, error) {
	items := cart.Items()
	stock, err := s.StockLimits(ctx, items)
	if err != nil {
		return nil, err
	}
	return ValidateStock(items, stock), nil
}

// Checkout places an order for the cart contents captured at call time.
// The cart is cleared only after the order was created; any failure
// leaves it as it was.
func (s *CheckoutService) Checkout(ctx context.Context, cart *CartStore, req models.CheckoutRequest) (*models.Order, error) {
	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if session == nil {
		return nil, ErrLoginRequired
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, &ValidationError{Field: "shipping_address", Reason: "is required"}
	}
	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		return nil, &ValidationError{Field: "payment_method", Reason: "is required"}
	}

	items := cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	stock, err := s.StockLimits(ctx, items)
	if err != nil {
		return nil, err
	}
	if shortages := ValidateStock(items, stock); len(shortages) > 0 {
		return nil, &StockError{Shortages: shortages}
	}

	order, err := s.orders.Create(ctx, models.NewOrder{
		UserID:          session.UserID,
		Items:           items,
		Total:           models.LineItemsTotal(items),
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		return nil, err
	}

	cart.ClearCart()
	s.logger.Info("order placed", "order_id", order.ID, "user_id", session.UserID, "total", order.Total.String())

	s.notify(session.Email, order)
	return order, nil
}

func (s *CheckoutService) notify(email string, order *models.Order) {
	if s.notifier == nil || email == "" {
		return
	}
	go func() {
		if err := s.notifier.OrderConfirmed(email, order); err != nil {
			s.logger.Warn("order confirmation email failed", "order_id", order.ID, "error", err)
		}
	}()
}

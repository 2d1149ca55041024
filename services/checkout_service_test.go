package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/models"
	"storefront/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	session *models.Session
	err     error
}

func (f *fakeSessions) CurrentSession(context.Context) (*models.Session, error) {
	return f.session, f.err
}

func (f *fakeSessions) Subscribe(func(*models.Session)) func() { return func() {} }

type fakeStock struct {
	snapshot models.StockSnapshot
	err      error
	calls    [][]string
}

func (f *fakeStock) StockFor(_ context.Context, ids []string) (models.StockSnapshot, error) {
	f.calls = append(f.calls, ids)
	return f.snapshot, f.err
}

type fakeOrders struct {
	mu        sync.Mutex
	created   []models.NewOrder
	createErr error
	orders    map[string]*models.Order
	updateErr error
}

func (f *fakeOrders) Create(_ context.Context, order models.NewOrder) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, order)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Order{
		ID:              uuid.NewString(),
		UserID:          order.UserID,
		Items:           order.Items,
		Total:           order.Total,
		Status:          models.OrderStatusConfirmed,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		CreatedAt:       time.Now(),
	}, nil
}

func (f *fakeOrders) FindForUser(_ context.Context, userID, orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, userID, orderID, from, to string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	order, ok := f.orders[orderID]
	if !ok || order.UserID != userID || order.Status != from {
		return nil, repositories.ErrNotFound
	}
	order.Status = to
	copied := *order
	return &copied, nil
}

type fakeNotifier struct {
	sent chan string
}

func (f *fakeNotifier) OrderConfirmed(toEmail string, _ *models.Order) error {
	f.sent <- toEmail
	return nil
}

var testSession = &models.Session{UserID: "user-1", Email: "buyer@example.com", Role: models.RoleCustomer}

var validRequest = models.CheckoutRequest{ShippingAddress: "12 Main St", PaymentMethod: "card"}

func newCheckoutFixture(t *testing.T) (*CheckoutService, *CartStore, *fakeStock, *fakeOrders) {
	t.Helper()
	stock := &fakeStock{snapshot: models.StockSnapshot{
		"A": {"M": 2, "L": 4},
		"B": {"M": 10},
	}}
	orders := &fakeOrders{}
	svc := NewCheckoutService(&fakeSessions{session: testSession}, stock, orders, nil, nil)
	cart := NewCartStore(repositories.NewMemoryKVStore(), StorageKey("checkout"), nil)
	return svc, cart, stock, orders
}

func TestCheckout_InsufficientStockReportsShortfall(t *testing.T) {
	svc, cart, _, orders := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 5)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, 2, stockErr.Shortages[0].Available)
	assert.Equal(t, 3, stockErr.Shortages[0].Shortfall)
	assert.Contains(t, err.Error(), "A/M short by 3 (only 2 available)")
	assert.Empty(t, orders.created)
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_ReportsEveryShortItem(t *testing.T) {
	svc, cart, _, _ := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 3)))
	require.NoError(t, cart.AddItem(lineItem("A", "XL", "10", 1)))
	require.NoError(t, cart.AddItem(lineItem("C", "M", "10", 1)))
	require.NoError(t, cart.AddItem(lineItem("B", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 3)
	assert.Equal(t, "A", stockErr.Shortages[0].ProductID)
	assert.Equal(t, 0, stockErr.Shortages[1].Available)
	assert.Equal(t, "C", stockErr.Shortages[2].ProductID)
}

func TestCheckout_SuccessClearsCartAndKeepsWishlist(t *testing.T) {
	svc, cart, _, orders := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 2)))
	require.NoError(t, cart.AddItem(lineItem("B", "M", "5", 1)))
	require.NoError(t, cart.AddToWishlist(models.WishlistItem{ProductID: "C", Size: "M"}))

	order, err := svc.Checkout(context.Background(), cart, validRequest)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "25", order.Total.String())
	require.Len(t, orders.created, 1)
	assert.Equal(t, "user-1", orders.created[0].UserID)
	assert.Equal(t, "12 Main St", orders.created[0].ShippingAddress)
	assert.Len(t, orders.created[0].Items, 2)
	assert.Empty(t, cart.Items())
	assert.Len(t, cart.WishlistItems(), 1)
}

func TestCheckout_ExactStockIsEnough(t *testing.T) {
	svc, cart, _, _ := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 2)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)
	assert.NoError(t, err)
}

func TestCheckout_RequiresSession(t *testing.T) {
	_, cart, stock, orders := newCheckoutFixture(t)
	svc := NewCheckoutService(&fakeSessions{}, stock, orders, nil, nil)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Empty(t, stock.calls)
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_RequiresAddressAndPaymentMethod(t *testing.T) {
	svc, cart, _, _ := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, models.CheckoutRequest{ShippingAddress: "  ", PaymentMethod: "card"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shipping_address", verr.Field)

	_, err = svc.Checkout(context.Background(), cart, models.CheckoutRequest{ShippingAddress: "12 Main St"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment_method", verr.Field)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, cart, stock, _ := newCheckoutFixture(t)

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, stock.calls)
}

func TestCheckout_OrderFailureKeepsCart(t *testing.T) {
	svc, cart, _, orders := newCheckoutFixture(t)
	orders.createErr = errors.New("insert failed")
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	assert.EqualError(t, err, "insert failed")
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_StockQueryFailure(t *testing.T) {
	svc, cart, stock, orders := newCheckoutFixture(t)
	stock.err = errors.New("connection refused")
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	assert.ErrorContains(t, err, "failed to fetch stock")
	assert.Empty(t, orders.created)
	assert.Len(t, cart.Items(), 1)
}

func TestCheckout_QueriesDistinctProductIDsOnce(t *testing.T) {
	svc, cart, stock, _ := newCheckoutFixture(t)
	require.NoError(t, cart.AddItem(lineItem("B", "M", "10", 1)))
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))
	require.NoError(t, cart.AddItem(lineItem("A", "L", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)

	require.NoError(t, err)
	require.Len(t, stock.calls, 1)
	assert.Equal(t, []string{"B", "A"}, stock.calls[0])
}

func TestCheckout_SendsConfirmationEmail(t *testing.T) {
	_, cart, stock, orders := newCheckoutFixture(t)
	notifier := &fakeNotifier{sent: make(chan string, 1)}
	svc := NewCheckoutService(&fakeSessions{session: testSession}, stock, orders, notifier, nil)
	require.NoError(t, cart.AddItem(lineItem("A", "M", "10", 1)))

	_, err := svc.Checkout(context.Background(), cart, validRequest)
	require.NoError(t, err)

	select {
	case to := <-notifier.sent:
		assert.Equal(t, "buyer@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("confirmation email was not sent")
	}
}

func TestValidate_ReportsWithoutSession(t *testing.T) {
	_, cart, stock, orders := newCheckoutFixture(t)
	svc := NewCheckoutService(&fakeSessions{}, stock, orders, nil, nil)
	require.NoError(t, cart.AddItem(lineItem("A", "L", "10", 6)))

	shortages, err := svc.Validate(context.Background(), cart)

	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, 2, shortages[0].Shortfall)
}

func TestStockLimits_EmptyItemsSkipsQuery(t *testing.T) {
	svc, _, stock, _ := newCheckoutFixture(t)

	snapshot, err := svc.StockLimits(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.Empty(t, stock.calls)
}

func TestDistinctProductIDs(t *testing.T) {
	items := []models.LineItem{
		lineItem("A", "M", "1", 1),
		lineItem("B", "M", "1", 1),
		lineItem("A", "L", "1", 1),
	}
	assert.Equal(t, []string{"A", "B"}, DistinctProductIDs(items))
	assert.Empty(t, DistinctProductIDs(nil))
}

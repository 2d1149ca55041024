package services

import (
	"context"
	"testing"

	"storefront/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(t *testing.T, status string) (*OrderService, *fakeOrders, string) {
	t.Helper()
	id := uuid.NewString()
	orders := &fakeOrders{orders: map[string]*models.Order{
		id: {ID: id, UserID: testSession.UserID, Status: status},
	}}
	return NewOrderService(&fakeSessions{session: testSession}, orders), orders, id
}

func TestOrderService_Cancel(t *testing.T) {
	svc, orders, id := newOrderFixture(t, models.OrderStatusConfirmed)

	order, err := svc.Cancel(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, models.OrderStatusCancelled, orders.orders[id].Status)
}

func TestOrderService_CancelShippedOrder(t *testing.T) {
	svc, _, id := newOrderFixture(t, models.OrderStatusShipped)

	order, err := svc.Cancel(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestOrderService_CancelTerminalOrder(t *testing.T) {
	for _, status := range []string{models.OrderStatusCancelled, models.OrderStatusDelivered} {
		t.Run(status, func(t *testing.T) {
			svc, _, id := newOrderFixture(t, status)

			_, err := svc.Cancel(context.Background(), id)
			assert.ErrorIs(t, err, ErrOrderNotCancellable)
		})
	}
}

func TestOrderService_CancelOtherUsersOrder(t *testing.T) {
	svc, orders, id := newOrderFixture(t, models.OrderStatusConfirmed)
	orders.orders[id].UserID = "someone-else"

	_, err := svc.Cancel(context.Background(), id)

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, models.OrderStatusConfirmed, orders.orders[id].Status)
}

func TestOrderService_CancelUnknownOrMalformedID(t *testing.T) {
	svc, _, _ := newOrderFixture(t, models.OrderStatusConfirmed)

	_, err := svc.Cancel(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.Cancel(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_RequiresSession(t *testing.T) {
	orders := &fakeOrders{}
	svc := NewOrderService(&fakeSessions{}, orders)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = svc.Cancel(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestOrderService_ListScopedToUser(t *testing.T) {
	svc, orders, id := newOrderFixture(t, models.OrderStatusConfirmed)
	other := uuid.NewString()
	orders.orders[other] = &models.Order{ID: other, UserID: "someone-else"}

	list, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const deliveryLeadTime = 7 * 24 * time.Hour

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id::text, user_id::text, items, total::text, status, shipping_address, payment_method, estimated_delivery, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var items []byte
	var total string
	err := row.Scan(&o.ID, &o.UserID, &items, &total, &o.Status, &o.ShippingAddress,
		&o.PaymentMethod, &o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("order %s has invalid items: %w", o.ID, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s has invalid total %q: %w", o.ID, total, err)
	}
	return &o, nil
}

// Create inserts a confirmed order due for delivery in seven days.
func (r *OrderRepository) Create(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	now := time.Now()
	created, err := scanOrder(r.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, items, total, status, shipping_address, payment_method, estimated_delivery, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $8)
		RETURNING `+orderColumns,
		order.UserID, items, order.Total.String(), models.OrderStatusConfirmed,
		order.ShippingAddress, order.PaymentMethod, now.Add(deliveryLeadTime), now))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

func (r *OrderRepository) FindForUser(ctx context.Context, userID, orderID string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order from one status to another. ErrNotFound means
// the order is gone or no longer in the expected status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, userID, orderID, from, to string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status = $4
		RETURNING `+orderColumns,
		to, orderID, userID, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

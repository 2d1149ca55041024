package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Items             []LineItem      `json:"items"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	ShippingAddress   string          `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the order can no longer change status.
func (o Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered
}

// NewOrder is the payload handed to the order-creation service.
type NewOrder struct {
	UserID          string
	Items           []LineItem
	Total           decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
}

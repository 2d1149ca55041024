package services

import (
	"errors"
	"fmt"
	"strings"

	"storefront/models"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrLoginRequired        = errors.New("user must be logged in")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotCancellable  = errors.New("order can no longer be cancelled")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrProductNotFound      = errors.New("product not found")
	ErrImageStorageDisabled = errors.New("image storage is not configured")
)

// ValidationError rejects input that would otherwise be coerced. Field names
// the offending input so a client can highlight it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StockError blocks a checkout attempt. It lists every line item the
// current stock cannot cover.
type StockError struct {
	Shortages []models.StockShortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s/%s short by %d (only %d available)", s.ProductID, s.Size, s.Shortfall, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

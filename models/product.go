package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sizes offered by the store.
const (
	SizeM  = "M"
	SizeL  = "L"
	SizeXL = "XL"
)

// SizeQuantities maps a size to its available quantity.
type SizeQuantities map[string]int

// StockSnapshot maps product id to per-size availability. It is fetched
// fresh for every cart view and checkout attempt and never persisted.
type StockSnapshot map[string]SizeQuantities

// Available returns the quantity on hand for a product and size, zero when
// either is unknown.
func (s StockSnapshot) Available(productID, size string) int {
	sizes, ok := s[productID]
	if !ok {
		return 0
	}
	return sizes[size]
}

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Color          string          `json:"color"`
	ImageURL       string          `json:"image_url"`
	Sizes          []string        `json:"sizes"`
	SizeQuantities SizeQuantities  `json:"size_quantities"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductFilter narrows a product listing. Empty fields match everything.
type ProductFilter struct {
	Search string
	Color  string
	Size   string
}

// Matches applies the filter to a product held in memory. Search looks at
// the name and description, case-insensitively.
func (f ProductFilter) Matches(p Product) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.Color != "" && !strings.EqualFold(p.Color, f.Color) {
		return false
	}
	if f.Size != "" && !p.HasSize(f.Size) {
		return false
	}
	return true
}

// HasSize reports whether the product is offered in size.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// StockShortage reports a line item the stock snapshot cannot cover.
type StockShortage struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Shortfall int    `json:"shortfall"`
}

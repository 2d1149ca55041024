package models

import "github.com/shopspring/decimal"

// CartStorageKey is the well-known key a cart snapshot is persisted under.
const CartStorageKey = "cart-storage"

// MaxLineQuantity bounds the quantity of a single cart entry.
const MaxLineQuantity = 999

// LineItem is one product+size combination in the cart.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl"`
	Size      string          `json:"size"`
	Color     *string         `json:"color,omitempty"`
}

// Subtotal returns unitPrice * quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// WishlistItem has the LineItem shape but is keyed by product only.
type WishlistItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
	Size      string          `json:"size"`
	Color     *string         `json:"color,omitempty"`
}

// CartSnapshot is the serialized form of a cart aggregate.
type CartSnapshot struct {
	LineItems     []LineItem     `json:"lineItems"`
	WishlistItems []WishlistItem `json:"wishlistItems"`
}

// Total sums the subtotals of the snapshot's line items.
func (s CartSnapshot) Total() decimal.Decimal {
	return LineItemsTotal(s.LineItems)
}

func LineItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type CartItemView struct {
	LineItem
	Available int `json:"available"`
}

// CartView is the cart as rendered for a client. StockChecked is false when
// live stock could not be read and Available values are unknown.
type CartView struct {
	Items         []CartItemView  `json:"items"`
	WishlistItems []WishlistItem  `json:"wishlistItems"`
	Total         decimal.Decimal `json:"total"`
	StockChecked  bool            `json:"stockChecked"`
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storefront/models"
	"storefront/repositories"

	"github.com/shopspring/decimal"
)

const persistTimeout = 2 * time.Second

// CartStore owns one cart aggregate: its line items and wishlist. Every
// mutation updates memory first and then flushes a snapshot to the
// key/value store; a failed flush is logged and never rolls the mutation
// back, so memory stays the source of truth for the session.
//
// The mutex makes each mutation and its flush run to completion before the
// next one starts.
type CartStore struct {
	mu       sync.Mutex
	key      string
	kv       repositories.KVStore
	logger   *slog.Logger
	items    []models.LineItem
	wishlist []models.WishlistItem
}

// NewCartStore hydrates the aggregate from the snapshot stored under key.
// A missing or unreadable snapshot yields an empty cart.
func NewCartStore(kv repositories.KVStore, key string, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CartStore{
		key:    key,
		kv:     kv,
		logger: logger.With("cart_key", key),
	}
	s.hydrate()
	return s
}

func (s *CartStore) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("cart hydration failed, starting empty", "error", err)
		return
	}
	if !found {
		return
	}

	var snapshot models.CartSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logger.Warn("cart snapshot is corrupt, starting empty", "error", err)
		return
	}

	for _, item := range snapshot.LineItems {
		if item.Quantity < 1 || item.Quantity > models.MaxLineQuantity {
			continue
		}
		s.items = append(s.items, item)
	}
	for _, item := range snapshot.WishlistItems {
		if s.wishlistIndex(item.ProductID) < 0 {
			s.wishlist = append(s.wishlist, item)
		}
	}
}

// flush writes the current aggregate. Callers hold s.mu.
func (s *CartStore) flush() {
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		s.logger.Error("cart snapshot encoding failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("cart persistence failed", "error", err)
	}
}

func (s *CartStore) snapshotLocked() models.CartSnapshot {
	return models.CartSnapshot{
		LineItems:     append([]models.LineItem{}, s.items...),
		WishlistItems: append([]models.WishlistItem{}, s.wishlist...),
	}
}

func (s *CartStore) indexOf(productID, size string) int {
	for i, item := range s.items {
		if item.ProductID == productID && item.Size == size {
			return i
		}
	}
	return -1
}

func (s *CartStore) wishlistIndex(productID string) int {
	for i, w := range s.wishlist {
		if w.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges item into the entry with the same product and size, adding
// the quantities, or appends it. Stock does not cap the merged quantity;
// MaxLineQuantity does.
func (s *CartStore) AddItem(item models.LineItem) error {
	if err := validateLineItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ProductID, item.Size); i >= 0 {
		merged := s.items[i].Quantity + item.Quantity
		if merged > models.MaxLineQuantity {
			return quantityTooLarge()
		}
		s.items[i].Quantity = merged
	} else {
		s.items = append(s.items, item)
	}
	s.logger.Debug("item added to cart", "product_id", item.ProductID, "size", item.Size, "quantity", item.Quantity)

	s.flush()
	return nil
}

func (s *CartStore) RemoveItem(productID, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID, size); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}

	s.flush()
}

// UpdateQuantity sets the quantity of an existing entry. Quantities below
// one are rejected; use RemoveItem to drop an entry. Unknown entries are
// left alone.
func (s *CartStore) UpdateQuantity(productID, size string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if quantity > models.MaxLineQuantity {
		return quantityTooLarge()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID, size); i >= 0 {
		s.items[i].Quantity = quantity
	}

	s.flush()
	return nil
}

// ClearCart empties the line items. The wishlist is kept.
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.flush()
}

// Total is recomputed on every call.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.LineItemsTotal(s.items)
}

// AddToWishlist is a no-op when the product is already wishlisted, whatever
// the size.
func (s *CartStore) AddToWishlist(item models.WishlistItem) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return &ValidationError{Field: "productId", Reason: "is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wishlistIndex(item.ProductID) < 0 {
		s.wishlist = append(s.wishlist, item)
	}

	s.flush()
	return nil
}

func (s *CartStore) RemoveFromWishlist(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.wishlistIndex(productID); i >= 0 {
		s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
	}

	s.flush()
}

func (s *CartStore) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.LineItem{}, s.items...)
}

func (s *CartStore) WishlistItems() []models.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.WishlistItem{}, s.wishlist...)
}

// Snapshot returns a copy of the aggregate, detached from later mutations.
func (s *CartStore) Snapshot() models.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func validateLineItem(item models.LineItem) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return &ValidationError{Field: "productId", Reason: "is required"}
	}
	if strings.TrimSpace(item.Size) == "" {
		return &ValidationError{Field: "size", Reason: "is required"}
	}
	if item.Quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, item.Quantity)
	}
	if item.Quantity > models.MaxLineQuantity {
		return quantityTooLarge()
	}
	if item.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	return nil
}

func quantityTooLarge() error {
	return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must not exceed %d per item", models.MaxLineQuantity)}
}

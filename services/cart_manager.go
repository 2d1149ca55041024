package services

import (
	"log/slog"

	"storefront/models"
	"storefront/repositories"
)

// CartManager opens cart stores over the shared key/value store. The
// application root owns it and passes it to whoever needs cart access.
//
// Stores are not kept between requests: every call hydrates from the
// key/value store, so instances sharing one Redis each start from the last
// flushed snapshot instead of a stale copy of their own.
type CartManager struct {
	kv     repositories.KVStore
	logger *slog.Logger
}

func NewCartManager(kv repositories.KVStore, logger *slog.Logger) *CartManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartManager{kv: kv, logger: logger}
}

// Cart returns a store for cartID hydrated from its persisted snapshot.
// Use one store per request.
func (m *CartManager) Cart(cartID string) *CartStore {
	return NewCartStore(m.kv, StorageKey(cartID), m.logger)
}

// StorageKey namespaces the well-known snapshot key by cart id.
func StorageKey(cartID string) string {
	return models.CartStorageKey + ":" + cartID
}

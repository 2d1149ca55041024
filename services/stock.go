package services

import (
	"context"

	"storefront/models"
)

// StockOracle reports live per-size availability. Ids without a record are
// simply absent from the snapshot.
type StockOracle interface {
	StockFor(ctx context.Context, productIDs []string) (models.StockSnapshot, error)
}

// DistinctProductIDs returns each product id once, in first-seen order.
func DistinctProductIDs(items []models.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ValidateStock returns one shortage per line item whose quantity exceeds
// what the snapshot holds for its product and size. An empty result means
// every item is covered.
func ValidateStock(items []models.LineItem, stock models.StockSnapshot) []models.StockShortage {
	var shortages []models.StockShortage
	for _, item := range items {
		available := stock.Available(item.ProductID, item.Size)
		if item.Quantity <= available {
			continue
		}
		shortages = append(shortages, models.StockShortage{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Requested: item.Quantity,
			Available: available,
			Shortfall: item.Quantity - available,
		})
	}
	return shortages
}

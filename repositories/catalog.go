package repositories

import (
	"sort"

	"storefront/models"

	"github.com/shopspring/decimal"
)

// builtinCatalog backs products that have no row in the products table yet.
var builtinCatalog = map[string]models.Product{
	"black-hoodie": {
		ID:          "black-hoodie",
		Name:        "Blesssed Streets Logo Hoodie",
		Description: "Premium black hoodie featuring the iconic Blesssed Streets logo embroidery.",
		Price:       decimal.RequireFromString("99.99"),
		Color:       "black",
		Sizes:       []string{models.SizeM, models.SizeL, models.SizeXL},
		SizeQuantities: models.SizeQuantities{
			models.SizeM:  15,
			models.SizeL:  18,
			models.SizeXL: 10,
		},
		IsActive: true,
	},
	"khaki-hoodie": {
		ID:          "khaki-hoodie",
		Name:        "Blesssed Streets Logo Hoodie",
		Description: "Premium khaki hoodie featuring the iconic Blesssed Streets logo embroidery.",
		Price:       decimal.RequireFromString("99.99"),
		Color:       "khaki",
		Sizes:       []string{models.SizeM, models.SizeL, models.SizeXL},
		SizeQuantities: models.SizeQuantities{
			models.SizeM:  19,
			models.SizeL:  21,
			models.SizeXL: 9,
		},
		IsActive: true,
	},
}

// CatalogProduct looks a product up in the built-in catalog.
func CatalogProduct(id string) (models.Product, bool) {
	p, ok := builtinCatalog[id]
	return p, ok
}

// CatalogProducts lists the built-in catalog ordered by id.
func CatalogProducts() []models.Product {
	products := make([]models.Product, 0, len(builtinCatalog))
	for _, p := range builtinCatalog {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

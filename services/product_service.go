package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"storefront/models"
	"storefront/repositories"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const productCacheTTL = 5 * time.Minute

type ProductStore interface {
	List(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	UpdateImageURL(ctx context.Context, id, imageURL string) error
}

type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, filename, folder string) (url, publicID string, err error)
}

// ProductService serves the catalogue. Product pages are cached in Redis
// when a client is configured; a nil client disables caching.
type ProductService struct {
	products ProductStore
	images   ImageStore
	cache    *redis.Client
	sfg      singleflight.Group
	logger   *slog.Logger
}

func NewProductService(products ProductStore, images ImageStore, cache *redis.Client, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		products: products,
		images:   images,
		cache:    cache,
		logger:   logger,
	}
}

func normalizeFilter(filter models.ProductFilter) models.ProductFilter {
	return models.ProductFilter{
		Search: strings.ToLower(strings.TrimSpace(filter.Search)),
		Color:  strings.ToLower(strings.TrimSpace(filter.Color)),
		Size:   strings.ToUpper(strings.TrimSpace(filter.Size)),
	}
}

func productCacheKey(filter models.ProductFilter, page, limit int) string {
	return fmt.Sprintf("products_list_p%d_l%d_q%q_c%q_s%q", page, limit, filter.Search, filter.Color, filter.Size)
}

// List returns one page of active products matching filter.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter, page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	filter = normalizeFilter(filter)
	key := productCacheKey(filter, page, limit)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var resp models.PaginationResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("product cache get failed", "error", err)
		}
	}

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		products, total, err := s.products.List(ctx, filter, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}

		resp := &models.PaginationResponse{
			Success: true,
			Message: "Products retrieved successfully",
			Data:    products,
			Meta: models.MetaData{
				Page:       page,
				Limit:      limit,
				TotalItems: total,
				TotalPages: int(math.Ceil(float64(total) / float64(limit))),
			},
		}

		if s.cache != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.cache.Set(ctx, key, data, productCacheTTL).Err(); err != nil {
					s.logger.Warn("product cache set failed", "error", err)
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PaginationResponse), nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// PriceLineItem replaces the client-sent name, price, image and color with
// the catalogue's values. Items without a product id are returned as they
// are so the cart can reject them.
func (s *ProductService) PriceLineItem(ctx context.Context, item models.LineItem) (models.LineItem, error) {
	if strings.TrimSpace(item.ProductID) == "" {
		return item, nil
	}
	p, err := s.sellable(ctx, item.ProductID, item.Size)
	if err != nil {
		return item, err
	}

	item.Name = p.Name
	item.UnitPrice = p.Price
	item.ImageURL = p.ImageURL
	item.Color = colorOf(p)
	return item, nil
}

// PriceWishlistItem does for a wishlist entry what PriceLineItem does for a
// cart entry.
func (s *ProductService) PriceWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error) {
	if strings.TrimSpace(item.ProductID) == "" {
		return item, nil
	}
	p, err := s.sellable(ctx, item.ProductID, item.Size)
	if err != nil {
		return item, err
	}

	item.Name = p.Name
	item.UnitPrice = p.Price
	item.ImageURL = p.ImageURL
	item.Color = colorOf(p)
	return item, nil
}

func (s *ProductService) sellable(ctx context.Context, productID, size string) (*models.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if size != "" && len(p.Sizes) > 0 && !p.HasSize(size) {
		return nil, &ValidationError{Field: "size", Reason: fmt.Sprintf("%s is not offered for %s", size, p.ID)}
	}
	return p, nil
}

func colorOf(p *models.Product) *string {
	if p.Color == "" {
		return nil
	}
	color := p.Color
	return &color
}

// UpdateImage uploads a product picture and points the product at it.
func (s *ProductService) UpdateImage(ctx context.Context, id string, file io.Reader, filename string) (string, error) {
	if s.images == nil {
		return "", ErrImageStorageDisabled
	}

	url, _, err := s.images.UploadImage(ctx, file, filename, "products")
	if err != nil {
		return "", err
	}

	if err := s.products.UpdateImageURL(ctx, id, url); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", err
	}

	s.invalidateListCache(ctx)
	return url, nil
}

func (s *ProductService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "products_list_*", 0).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("product cache invalidation failed", "error", err)
	}
}

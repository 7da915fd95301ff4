package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/models"
	"storefront/internal/repository"
)

const (
	allProductsKey    = "products:all"
	activeProductsKey = "products:active"
)

// CachedProductRepository keeps the catalog listing in redis. Only the
// product rows are cached: sizes and stock are always read from the
// database, so checkout stock decrements never leave stale reads behind.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	log      *slog.Logger
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo repository.ProductRepository, rdb *redis.Client, log *slog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		log:      log,
		ttl:      5 * time.Minute,
	}
}

func (c *CachedProductRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	key := allProductsKey
	if activeOnly {
		key = activeProductsKey
	}

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var products []models.Product
		if err := json.Unmarshal(data, &products); err != nil {
			c.log.Warn("failed to unmarshal cached products, falling back to DB", slog.Any("error", err))
			break
		}
		return products, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.Warn("redis error, falling back to DB", slog.Any("error", err))
	}

	products, err := c.realRepo.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		c.log.Warn("failed to marshal products for cache", slog.Any("error", err))
		return products, nil
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache products", slog.Any("error", err))
	}

	return products, nil
}

// Catalog writes invalidate the listing keys only after the database
// write has succeeded: dropping them first would let a concurrent GetAll
// re-cache the old listing for the full TTL.

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.invalidateLists(ctx)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, id int, patch repository.ProductPatch) error {
	if err := c.realRepo.Update(ctx, id, patch); err != nil {
		return err
	}
	c.invalidateLists(ctx)
	return nil
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := c.realRepo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidateLists(ctx)
	return nil
}

// Single-product reads and everything touching stock go straight to the
// database.

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return c.realRepo.GetByID(ctx, id)
}

func (c *CachedProductRepository) ListSizes(ctx context.Context, productID int) ([]models.ProductSize, error) {
	return c.realRepo.ListSizes(ctx, productID)
}

func (c *CachedProductRepository) GetSize(ctx context.Context, productID int, size string) (*models.ProductSize, error) {
	return c.realRepo.GetSize(ctx, productID, size)
}

func (c *CachedProductRepository) ReplaceSizes(ctx context.Context, productID int, sizes []models.ProductSize) error {
	return c.realRepo.ReplaceSizes(ctx, productID, sizes)
}

func (c *CachedProductRepository) DecrementStock(ctx context.Context, productID int, size string, quantity int) (bool, error) {
	return c.realRepo.DecrementStock(ctx, productID, size, quantity)
}

func (c *CachedProductRepository) invalidateLists(ctx context.Context) {
	for _, key := range []string{allProductsKey, activeProductsKey} {
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			c.log.Warn("failed to delete product cache", slog.String("key", key), slog.Any("error", err))
		}
	}
}

var _ repository.ProductRepository = (*CachedProductRepository)(nil)

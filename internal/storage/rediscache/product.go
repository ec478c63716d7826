// Package rediscache - cache-aside поверх хранилища каталога.
// Читаем из redis, при промахе идем в БД и кладем результат с TTL;
// любая мутация сбрасывает затронутые ключи.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/storage"
)

const productListKey = "products:all"

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

type ProductCache struct {
	storage.ProductStorage
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

var _ storage.ProductStorage = (*ProductCache)(nil)

func NewProductCache(log *slog.Logger, inner storage.ProductStorage, client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{ProductStorage: inner, client: client, ttl: ttl, log: log}
}

// ошибки redis не ломают запрос: логируем и работаем напрямую с БД
func (c *ProductCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("redis get failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("redis value corrupted", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (c *ProductCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("redis invalidate failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}

func (c *ProductCache) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var cached []*models.Product
	if c.get(ctx, productListKey, &cached) {
		return cached, nil
	}
	products, err := c.ProductStorage.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, productListKey, products)
	return products, nil
}

func (c *ProductCache) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var cached models.Product
	if c.get(ctx, productKey(id), &cached) {
		return &cached, nil
	}
	product, err := c.ProductStorage.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, productKey(id), product)
	return product, nil
}

func (c *ProductCache) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	created, err := c.ProductStorage.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, productListKey)
	return created, nil
}

func (c *ProductCache) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	updated, err := c.ProductStorage.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, productListKey, productKey(product.ID))
	return updated, nil
}

func (c *ProductCache) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := c.ProductStorage.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, productListKey, productKey(id))
	return nil
}

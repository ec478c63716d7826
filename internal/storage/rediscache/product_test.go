package rediscache_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/storage"
	"github.com/shophub/shop-api/internal/storage/rediscache"
)

// countingProductRepo считает обращения к "БД"
type countingProductRepo struct {
	products map[uuid.UUID]*models.Product
	gets     int
	lists    int
}

var _ storage.ProductStorage = (*countingProductRepo)(nil)

func (f *countingProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	f.lists++
	out := make([]*models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *countingProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	f.gets++
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *countingProductRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.products[p.ID] = p
	return p, nil
}

func (f *countingProductRepo) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.products[p.ID] = p
	return p, nil
}

func (f *countingProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func setup(t *testing.T) (*rediscache.ProductCache, *countingProductRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingProductRepo{products: make(map[uuid.UUID]*models.Product)}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return rediscache.NewProductCache(logger, inner, client, time.Minute), inner, mr
}

func TestProductCache_GetProductByID_HitsStoreOnce(t *testing.T) {
	cache, inner, mr := setup(t)
	ctx := context.Background()
	id := uuid.New()
	inner.products[id] = &models.Product{ID: id, Name: "Mug", Price: decimal.RequireFromString("199.50")}

	first, err := cache.GetProductByID(ctx, id)
	require.NoError(t, err)
	second, err := cache.GetProductByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.gets, "second read must be served from redis")
	assert.Equal(t, "Mug", second.Name)
	assert.True(t, first.Price.Equal(second.Price))
	assert.True(t, mr.Exists("product:"+id.String()))
}

func TestProductCache_NotFoundIsNotCached(t *testing.T) {
	cache, inner, _ := setup(t)
	ctx := context.Background()

	_, err := cache.GetProductByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.Equal(t, 1, inner.gets)
}

func TestProductCache_UpdateInvalidates(t *testing.T) {
	cache, inner, mr := setup(t)
	ctx := context.Background()
	id := uuid.New()
	inner.products[id] = &models.Product{ID: id, Name: "Mug"}

	_, err := cache.GetProductByID(ctx, id)
	require.NoError(t, err)
	_, err = cache.ListProducts(ctx)
	require.NoError(t, err)

	_, err = cache.UpdateProduct(ctx, &models.Product{ID: id, Name: "Big mug"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:"+id.String()))
	assert.False(t, mr.Exists("products:all"))

	updated, err := cache.GetProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Big mug", updated.Name)
	assert.Equal(t, 2, inner.gets)
}

func TestProductCache_ListCachedUntilCreate(t *testing.T) {
	cache, inner, _ := setup(t)
	ctx := context.Background()

	_, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	_, err = cache.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lists)

	_, err = cache.CreateProduct(ctx, &models.Product{ID: uuid.New(), Name: "Tee"})
	require.NoError(t, err)

	products, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 2, inner.lists)
}

func TestProductCache_RedisDownFallsBackToStore(t *testing.T) {
	cache, inner, mr := setup(t)
	ctx := context.Background()
	id := uuid.New()
	inner.products[id] = &models.Product{ID: id, Name: "Mug"}
	mr.Close()

	p, err := cache.GetProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
}

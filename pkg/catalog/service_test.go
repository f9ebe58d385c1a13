package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/repository"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStore struct {
	products map[string]models.Product
	gets     int
	lists    int
}

func (c *countingStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	c.gets++
	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (c *countingStore) ListProducts(_ context.Context, category string) ([]models.Product, error) {
	c.lists++
	var out []models.Product
	for _, p := range c.products {
		if p.Active && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newCatalog(t *testing.T) (*Service, *countingStore, *repository.RedisRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := repository.NewRedisRepositoryWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = cache.Close() })

	store := &countingStore{products: map[string]models.Product{
		"p1": {ID: "p1", Name: "Empanada", Category: "empanadas", Price: decimal.NewFromInt(300), Active: true},
		"p2": {ID: "p2", Name: "Pizza", Category: "pizzas", Price: decimal.NewFromInt(1500), Active: true,
			StockBySize: models.SizeStockMap{"Grande": models.CountEntry(4)}},
		"p3": {ID: "p3", Name: "Retirado", Category: "pizzas", Price: decimal.NewFromInt(100)},
	}}
	return NewService(store, cache, zap.NewNop()), store, cache
}

func TestGet_CachesProduct(t *testing.T) {
	svc, store, _ := newCatalog(t)
	ctx := context.Background()

	p, err := svc.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", p.Name)

	p, err = svc.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)
	entry := p.StockBySize["Grande"]
	require.NotNil(t, entry.Stock)
	assert.Equal(t, 4, *entry.Stock)
}

func TestGet_HidesMissingAndInactive(t *testing.T) {
	svc, _, _ := newCatalog(t)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Get(context.Background(), "p3")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestList_CachesPerCategory(t *testing.T) {
	svc, store, cache := newCatalog(t)
	ctx := context.Background()

	pizzas, err := svc.List(ctx, "pizzas")
	require.NoError(t, err)
	require.Len(t, pizzas, 1)

	_, err = svc.List(ctx, "pizzas")
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, store.lists)

	require.NoError(t, cache.InvalidateCatalog(ctx))
	_, err = svc.List(ctx, "pizzas")
	require.NoError(t, err)
	assert.Equal(t, 3, store.lists)
}

func TestList_WithoutCache(t *testing.T) {
	store := &countingStore{}
	svc := NewService(store, nil, zap.NewNop())

	products, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/models"
	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("cache miss")

const defaultCacheTTL = 10 * time.Minute

type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return NewRedisRepositoryWithClient(client, cfg.CacheTTL)
}

func NewRedisRepositoryWithClient(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func productListKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("products:%s", category)
}

func orderKey(id string) string {
	return fmt.Sprintf("order:%s", id)
}

func (r *RedisRepository) CacheProduct(ctx context.Context, p *models.Product) error {
	return r.SetJSON(ctx, productKey(p.ID), p, r.ttl)
}

func (r *RedisRepository) GetProductCache(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.GetJSON(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepository) CacheProductList(ctx context.Context, category string, products []models.Product) error {
	return r.SetJSON(ctx, productListKey(category), products, r.ttl)
}

func (r *RedisRepository) GetProductListCache(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if err := r.GetJSON(ctx, productListKey(category), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// InvalidateCatalog drops every cached product and product list.
func (r *RedisRepository) InvalidateCatalog(ctx context.Context) error {
	var keys []string
	for _, pattern := range []string{"product:*", "products:*"} {
		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Del(ctx, keys...)
}

func (r *RedisRepository) CacheOrder(ctx context.Context, o *models.Order) error {
	return r.SetJSON(ctx, orderKey(o.ID), o, r.ttl)
}

func (r *RedisRepository) GetOrderCache(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.GetJSON(ctx, orderKey(id), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *RedisRepository) InvalidateOrder(ctx context.Context, id string) error {
	return r.Del(ctx, orderKey(id))
}

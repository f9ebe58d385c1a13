package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/foodshop/pkg/models"
	"github.com/example/foodshop/pkg/repository"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
}

type Cache interface {
	CacheProduct(ctx context.Context, p *models.Product) error
	GetProductCache(ctx context.Context, id string) (*models.Product, error)
	CacheProductList(ctx context.Context, category string, products []models.Product) error
	GetProductListCache(ctx context.Context, category string) ([]models.Product, error)
}

// Service serves the storefront catalog. Reads go through the cache;
// checkout never uses it and always reads the store directly.
type Service struct {
	store  Store
	cache  Cache
	logger *zap.Logger
}

func NewService(store Store, cache Cache, logger *zap.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger.Named("catalog")}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	if s.cache != nil {
		p, err := s.cache.GetProductCache(ctx, id)
		if err == nil {
			return p, nil
		}
		s.logMiss(err, zap.String("product_id", id))
	}

	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.Active) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheProduct(ctx, p); err != nil {
			s.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

// List returns active products, optionally within one category.
func (s *Service) List(ctx context.Context, category string) ([]models.Product, error) {
	if s.cache != nil {
		products, err := s.cache.GetProductListCache(ctx, category)
		if err == nil {
			return products, nil
		}
		s.logMiss(err, zap.String("category", category))
	}

	products, err := s.store.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	if s.cache != nil {
		if err := s.cache.CacheProductList(ctx, category, products); err != nil {
			s.logger.Warn("Failed to cache product list", zap.String("category", category), zap.Error(err))
		}
	}
	return products, nil
}

func (s *Service) logMiss(err error, field zap.Field) {
	if errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Debug("Catalog cache miss", field)
		return
	}
	s.logger.Warn("Catalog cache read failed", field, zap.Error(err))
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/repository"

	"github.com/rs/zerolog"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = time.Minute

type CatalogService struct {
	products repository.ProductRepository
	cache    cache.CacheInterface
	log      zerolog.Logger
}

func NewCatalogService(products repository.ProductRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

func (s *CatalogService) SetCache(c cache.CacheInterface) {
	s.cache = c
}

// ListProducts returns active products, filtered by category/subcategory slug
// and sorted by q.Sort (newest first when empty or unknown).
func (s *CatalogService) ListProducts(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	products, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// GetProduct returns the active product with the given slug, read through the
// product cache when one is configured.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*domain.Product, error) {
	key := cache.ProductKey(slug)
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("slug", slug).Msg("product cache read failed")
		} else if b != nil {
			var p domain.Product
			if err := json.Unmarshal(b, &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.products.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	s.store(ctx, p)
	return p, nil
}

func (s *CatalogService) store(ctx context.Context, p *domain.Product) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ProductKey(p.Slug), b, productCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("slug", p.Slug).Msg("product cache write failed")
	}
}

// Invalidate drops the cached detail for slug.
func (s *CatalogService) Invalidate(ctx context.Context, slug string) {
	if s.cache == nil || slug == "" {
		return
	}
	if err := s.cache.Del(ctx, cache.ProductKey(slug)); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("product cache invalidation failed")
	}
}

// WarmupProductCache loads the newest limit active products into the cache.
func (s *CatalogService) WarmupProductCache(ctx context.Context, limit int) error {
	if s.cache == nil {
		return nil
	}
	products, err := s.products.List(ctx, repository.ProductQuery{Sort: repository.SortNewest})
	if err != nil {
		return err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	for i := range products {
		s.store(ctx, &products[i])
	}
	s.log.Info().Int("products", len(products)).Msg("product cache warmed up")
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/mocks"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListProducts(t *testing.T) {
	store := memory.NewStore()
	store.AddCategory(domain.Category{ID: "c-shirts", Name: "Shirts", Slug: "shirts"})
	store.AddCategory(domain.Category{ID: "c-hats", Name: "Hats", Slug: "hats"})
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.AddProduct(domain.Product{Name: "Beta Tee", Slug: "beta", BasePrice: decimal.NewFromInt(30), CategoryID: "c-shirts", IsActive: true, CreatedAt: base})
	store.AddProduct(domain.Product{Name: "Alpha Tee", Slug: "alpha", BasePrice: decimal.NewFromInt(50), CategoryID: "c-shirts", IsActive: true, CreatedAt: base.Add(time.Hour)})
	store.AddProduct(domain.Product{Name: "Cap", Slug: "cap", BasePrice: decimal.NewFromInt(10), CategoryID: "c-hats", IsActive: true, CreatedAt: base.Add(2 * time.Hour)})
	store.AddProduct(domain.Product{Name: "Hidden", Slug: "hidden", BasePrice: decimal.NewFromInt(1), CategoryID: "c-hats", IsActive: false, CreatedAt: base.Add(3 * time.Hour)})

	service := NewCatalogService(store.Products(), zerolog.Nop())

	tests := []struct {
		name     string
		query    repository.ProductQuery
		expected []string
	}{
		{name: "newest first by default", query: repository.ProductQuery{}, expected: []string{"cap", "alpha", "beta"}},
		{name: "price low to high", query: repository.ProductQuery{Sort: repository.SortPriceLow}, expected: []string{"cap", "beta", "alpha"}},
		{name: "price high to low", query: repository.ProductQuery{Sort: repository.SortPriceHigh}, expected: []string{"alpha", "beta", "cap"}},
		{name: "by name", query: repository.ProductQuery{Sort: repository.SortName}, expected: []string{"alpha", "beta", "cap"}},
		{name: "category filter", query: repository.ProductQuery{CategorySlug: "shirts", Sort: repository.SortName}, expected: []string{"alpha", "beta"}},
		{name: "unknown category is ignored", query: repository.ProductQuery{CategorySlug: "nope"}, expected: []string{"cap", "alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := service.ListProducts(context.Background(), tt.query)
			require.NoError(t, err)
			slugs := make([]string, 0, len(products))
			for _, p := range products {
				slugs = append(slugs, p.Slug)
			}
			assert.Equal(t, tt.expected, slugs)
		})
	}
}

func TestCatalogService_GetProduct(t *testing.T) {
	product := &domain.Product{ID: "p-1", Name: "Tee", Slug: "tee", BasePrice: decimal.NewFromInt(25), IsActive: true}
	cached, _ := json.Marshal(product)

	tests := []struct {
		name          string
		withCache     bool
		setupMocks    func(*mocks.MockProductRepository, *mocks.MockCache)
		expectedError error
	}{
		{
			name: "loads from store without cache",
			setupMocks: func(repo *mocks.MockProductRepository, c *mocks.MockCache) {
				repo.On("FindActiveBySlug", mock.Anything, "tee").Return(product, nil)
			},
		},
		{
			name:      "cache hit skips store",
			withCache: true,
			setupMocks: func(repo *mocks.MockProductRepository, c *mocks.MockCache) {
				c.On("Get", mock.Anything, "product:tee").Return(cached, nil)
			},
		},
		{
			name:      "cache miss reads through",
			withCache: true,
			setupMocks: func(repo *mocks.MockProductRepository, c *mocks.MockCache) {
				c.On("Get", mock.Anything, "product:tee").Return(nil, nil)
				repo.On("FindActiveBySlug", mock.Anything, "tee").Return(product, nil)
				c.On("Set", mock.Anything, "product:tee", mock.AnythingOfType("[]uint8"), time.Minute).Return(nil)
			},
		},
		{
			name:      "cache error falls back to store",
			withCache: true,
			setupMocks: func(repo *mocks.MockProductRepository, c *mocks.MockCache) {
				c.On("Get", mock.Anything, "product:tee").Return(nil, errors.New("i/o timeout"))
				repo.On("FindActiveBySlug", mock.Anything, "tee").Return(product, nil)
				c.On("Set", mock.Anything, "product:tee", mock.Anything, time.Minute).Return(nil)
			},
		},
		{
			name: "product not found",
			setupMocks: func(repo *mocks.MockProductRepository, c *mocks.MockCache) {
				repo.On("FindActiveBySlug", mock.Anything, "tee").Return(nil, nil)
			},
			expectedError: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockProductRepository)
			c := new(mocks.MockCache)
			tt.setupMocks(repo, c)

			service := NewCatalogService(repo, zerolog.Nop())
			if tt.withCache {
				service.SetCache(c)
			}

			result, err := service.GetProduct(context.Background(), "tee")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "p-1", result.ID)
				assert.True(t, result.BasePrice.Equal(decimal.NewFromInt(25)))
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestCatalogService_WarmupProductCache(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	c := new(mocks.MockCache)
	repo.On("List", mock.Anything, repository.ProductQuery{Sort: repository.SortNewest}).Return([]domain.Product{
		{ID: "p-1", Slug: "one"}, {ID: "p-2", Slug: "two"}, {ID: "p-3", Slug: "three"},
	}, nil)
	c.On("Set", mock.Anything, "product:one", mock.Anything, time.Minute).Return(nil).Once()
	c.On("Set", mock.Anything, "product:two", mock.Anything, time.Minute).Return(nil).Once()

	service := NewCatalogService(repo, zerolog.Nop())
	service.SetCache(c)

	require.NoError(t, service.WarmupProductCache(context.Background(), 2))
	c.AssertExpectations(t)
	c.AssertNotCalled(t, "Set", mock.Anything, "product:three", mock.Anything, mock.Anything)
}

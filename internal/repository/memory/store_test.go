package memory

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, s *Store, images ...domain.ProductImage) string {
	t.Helper()
	s.AddCategory(domain.Category{ID: "cat-1", Name: "Shirts", Slug: "shirts"})
	return s.AddProduct(domain.Product{
		Name:       "Linen Shirt",
		Slug:       "linen-shirt",
		BasePrice:  decimal.NewFromInt(500),
		CategoryID: "cat-1",
		IsActive:   true,
		Images:     images,
	})
}

func TestFindActiveBySlug_AttachesImages(t *testing.T) {
	s := NewStore()
	id := seedProduct(t, s,
		domain.ProductImage{ImageURL: "https://cdn.example.com/b.jpg", DisplayOrder: 2},
		domain.ProductImage{ImageURL: "https://cdn.example.com/a.jpg", DisplayOrder: 1},
	)

	p, err := s.Products().FindActiveBySlug(context.Background(), "linen-shirt")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.Images[0].ImageURL)
	assert.Equal(t, id, p.Images[0].ProductID)
	assert.NotEmpty(t, p.Images[0].ID)
	require.NotNil(t, p.Category)
	assert.Equal(t, "shirts", p.Category.Slug)

	list, err := s.Products().List(context.Background(), repository.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Images, 2)
}

func TestFindActiveBySlug_NoImages(t *testing.T) {
	s := NewStore()
	seedProduct(t, s)

	p, err := s.Products().FindActiveBySlug(context.Background(), "linen-shirt")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.Images)
}

func TestTransaction_RollbackRestoresStock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	productID := seedProduct(t, s)
	variantID := s.AddVariant(domain.ProductVariant{ProductID: productID, StockQuantity: 2})

	err := s.Transaction(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Variants().Reserve(ctx, variantID, 2))
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	v, err := s.Variants().FindByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.StockQuantity)

	p, err := s.Products().FindActiveBySlug(ctx, "linen-shirt")
	require.NoError(t, err)
	assert.Equal(t, productID, p.ID)
}

package gormrepo

import (
	"context"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

func (suite *StoreTestSuite) TestFindActiveBySlug_PreloadsDetails() {
	ctx := context.Background()
	p := suite.createTestProduct("tee", 500)
	suite.createTestVariant(p.ID, 3)
	images := []domain.ProductImage{
		{ProductID: p.ID, ImageURL: "https://cdn.example.com/b.jpg", DisplayOrder: 2},
		{ProductID: p.ID, ImageURL: "https://cdn.example.com/a.jpg", DisplayOrder: 1},
	}
	suite.Require().NoError(suite.db.Create(&images).Error)

	got, err := suite.store.Products().FindActiveBySlug(ctx, "tee")
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Require().NotNil(got.Category)
	suite.Equal("shirts-tee", got.Category.Slug)
	suite.Len(got.Variants, 1)
	suite.Require().Len(got.Images, 2)
	suite.Equal("https://cdn.example.com/a.jpg", got.Images[0].ImageURL)

	missing, err := suite.store.Products().FindActiveBySlug(ctx, "nope")
	suite.NoError(err)
	suite.Nil(missing)
}

func (suite *StoreTestSuite) TestSetActive() {
	ctx := context.Background()
	p := suite.createTestProduct("tee", 500)

	suite.Require().NoError(suite.store.Products().SetActive(ctx, p.ID, false))
	got, err := suite.store.Products().FindActiveBySlug(ctx, "tee")
	suite.NoError(err)
	suite.Nil(got)

	suite.ErrorIs(suite.store.Products().SetActive(ctx, "missing", true), repository.ErrNotFound)
}

func (suite *StoreTestSuite) TestListProducts_Sort() {
	ctx := context.Background()
	suite.createTestProduct("mid", 300)
	suite.createTestProduct("cheap", 100)
	suite.createTestProduct("dear", 900)
	hidden := suite.createTestProduct("hidden", 50)
	suite.Require().NoError(suite.store.Products().SetActive(ctx, hidden.ID, false))

	tests := []struct {
		name     string
		query    repository.ProductQuery
		expected []string
	}{
		{name: "price low", query: repository.ProductQuery{Sort: repository.SortPriceLow}, expected: []string{"cheap", "mid", "dear"}},
		{name: "price high", query: repository.ProductQuery{Sort: repository.SortPriceHigh}, expected: []string{"dear", "mid", "cheap"}},
		{name: "category filter", query: repository.ProductQuery{CategorySlug: "shirts-mid"}, expected: []string{"mid"}},
		{name: "unknown category is ignored", query: repository.ProductQuery{CategorySlug: "nope", Sort: repository.SortName}, expected: []string{"cheap", "dear", "mid"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			out, err := suite.store.Products().List(ctx, tt.query)
			suite.Require().NoError(err)
			slugs := make([]string, 0, len(out))
			for _, p := range out {
				slugs = append(slugs, p.Slug)
			}
			suite.Equal(tt.expected, slugs)
		})
	}

	n, err := suite.store.Products().Count(ctx)
	suite.NoError(err)
	suite.Equal(int64(4), n)
}

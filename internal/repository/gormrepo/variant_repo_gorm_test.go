package gormrepo

import (
	"context"

	"storefront-service/internal/repository"
)

func (suite *StoreTestSuite) TestDecrementClamped() {
	tests := []struct {
		name          string
		stock         int
		qty           int
		expectedStock int
	}{
		{name: "enough stock", stock: 5, qty: 2, expectedStock: 3},
		{name: "exact stock", stock: 3, qty: 3, expectedStock: 0},
		{name: "oversell clamps to zero", stock: 3, qty: 7, expectedStock: 0},
		{name: "already empty", stock: 0, qty: 1, expectedStock: 0},
	}

	p := suite.createTestProduct("tee", 500)
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			v := suite.createTestVariant(p.ID, tt.stock)

			err := suite.store.Variants().DecrementClamped(context.Background(), v.ID, tt.qty)

			suite.NoError(err)
			suite.Equal(tt.expectedStock, suite.stockOf(v.ID))
		})
	}
}

func (suite *StoreTestSuite) TestDecrementClamped_UnknownVariant() {
	err := suite.store.Variants().DecrementClamped(context.Background(), "00000000-0000-0000-0000-000000000000", 1)
	suite.NoError(err)
}

func (suite *StoreTestSuite) TestReserve() {
	tests := []struct {
		name          string
		stock         int
		qty           int
		expectedErr   error
		expectedStock int
	}{
		{name: "enough stock", stock: 5, qty: 2, expectedStock: 3},
		{name: "exact stock", stock: 2, qty: 2, expectedStock: 0},
		{name: "insufficient stock is untouched", stock: 1, qty: 2, expectedErr: repository.ErrInsufficientStock, expectedStock: 1},
		{name: "empty stock", stock: 0, qty: 1, expectedErr: repository.ErrInsufficientStock, expectedStock: 0},
		{name: "zero quantity is a no-op", stock: 4, qty: 0, expectedStock: 4},
	}

	p := suite.createTestProduct("tee", 500)
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			v := suite.createTestVariant(p.ID, tt.stock)

			err := suite.store.Variants().Reserve(context.Background(), v.ID, tt.qty)

			if tt.expectedErr != nil {
				suite.ErrorIs(err, tt.expectedErr)
			} else {
				suite.NoError(err)
			}
			suite.Equal(tt.expectedStock, suite.stockOf(v.ID))
		})
	}
}

func (suite *StoreTestSuite) TestReserve_UnknownVariant() {
	err := suite.store.Variants().Reserve(context.Background(), "00000000-0000-0000-0000-000000000000", 1)
	suite.ErrorIs(err, repository.ErrInsufficientStock)
}

func (suite *StoreTestSuite) TestRestore() {
	ctx := context.Background()
	p := suite.createTestProduct("tee", 500)
	v := suite.createTestVariant(p.ID, 5)

	suite.Require().NoError(suite.store.Variants().Reserve(ctx, v.ID, 4))
	suite.Require().NoError(suite.store.Variants().Restore(ctx, v.ID, 4))
	suite.Equal(5, suite.stockOf(v.ID))

	suite.NoError(suite.store.Variants().Restore(ctx, v.ID, 0))
	suite.Equal(5, suite.stockOf(v.ID))
}

func (suite *StoreTestSuite) TestFindVariant_Missing() {
	v, err := suite.store.Variants().FindByID(context.Background(), "missing")
	suite.NoError(err)
	suite.Nil(v)
}

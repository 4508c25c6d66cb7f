package gormrepo

import (
	"context"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
)

func (suite *StoreTestSuite) TestSaveItemsAndFind() {
	ctx := context.Background()
	p := suite.createTestProduct("tee", 500)
	o := suite.createTestOrder("ORD-1-AAAAAA", domain.StatusPending, 1000)
	suite.NotEmpty(o.ID)

	size := "M"
	items := []domain.OrderItem{
		domain.NewOrderItem(o.ID, domain.CartItem{ProductID: p.ID, ProductName: p.Name, Size: &size,
			Quantity: 2, UnitPrice: decimal.NewFromInt(500)}),
	}
	suite.Require().NoError(suite.store.Orders().SaveItems(ctx, items))
	suite.NoError(suite.store.Orders().SaveItems(ctx, nil))

	got, err := suite.store.Orders().FindByID(ctx, o.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal("ORD-1-AAAAAA", got.OrderNumber)
	suite.Nil(got.Notes)

	stored, err := suite.store.Orders().FindItems(ctx, o.ID)
	suite.Require().NoError(err)
	suite.Require().Len(stored, 1)
	suite.Equal(2, stored[0].Quantity)
	suite.True(decimal.NewFromInt(1000).Equal(stored[0].Subtotal))
	suite.Equal("M", *stored[0].Size)

	has, err := suite.store.Orders().HasItemsForProduct(ctx, p.ID)
	suite.NoError(err)
	suite.True(has)
	has, err = suite.store.Orders().HasItemsForProduct(ctx, "other")
	suite.NoError(err)
	suite.False(has)
}

func (suite *StoreTestSuite) TestSave_DuplicateOrderNumber() {
	suite.createTestOrder("ORD-1-AAAAAA", domain.StatusPending, 100)
	dup := &domain.Order{OrderNumber: "ORD-1-AAAAAA", TotalAmount: decimal.NewFromInt(100), Status: domain.StatusPending}
	suite.Error(suite.store.Orders().Save(context.Background(), dup))
}

func (suite *StoreTestSuite) TestDelete_RemovesItemsThenHeader() {
	ctx := context.Background()
	p := suite.createTestProduct("tee", 500)
	o := suite.createTestOrder("ORD-1-AAAAAA", domain.StatusPending, 500)
	keep := suite.createTestOrder("ORD-1-BBBBBB", domain.StatusPending, 500)
	for _, id := range []string{o.ID, keep.ID} {
		items := []domain.OrderItem{domain.NewOrderItem(id, domain.CartItem{ProductID: p.ID, ProductName: p.Name,
			Quantity: 1, UnitPrice: decimal.NewFromInt(500)})}
		suite.Require().NoError(suite.store.Orders().SaveItems(ctx, items))
	}

	suite.Require().NoError(suite.store.Orders().Delete(ctx, o.ID))

	got, err := suite.store.Orders().FindByID(ctx, o.ID)
	suite.NoError(err)
	suite.Nil(got)
	items, err := suite.store.Orders().FindItems(ctx, o.ID)
	suite.NoError(err)
	suite.Empty(items)

	suite.Equal(int64(1), suite.countRows(&domain.Order{}))
	suite.Equal(int64(1), suite.countRows(&domain.OrderItem{}))

	suite.NoError(suite.store.Orders().Delete(ctx, "missing"))
}

func (suite *StoreTestSuite) TestUpdateStatus() {
	ctx := context.Background()
	o := suite.createTestOrder("ORD-1-AAAAAA", domain.StatusPending, 500)

	suite.Require().NoError(suite.store.Orders().UpdateStatus(ctx, o.ID, domain.StatusShipped))
	got, err := suite.store.Orders().FindByID(ctx, o.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusShipped, got.Status)

	suite.ErrorIs(suite.store.Orders().UpdateStatus(ctx, "missing", domain.StatusShipped), repository.ErrNotFound)
}

func (suite *StoreTestSuite) TestListAndAggregates() {
	ctx := context.Background()
	suite.createTestOrder("ORD-1-AAAAAA", domain.StatusPending, 100)
	suite.createTestOrder("ORD-1-BBBBBB", domain.StatusPending, 250)
	suite.createTestOrder("ORD-1-CCCCCC", domain.StatusDelivered, 50)

	all, err := suite.store.Orders().List(ctx, repository.OrderFilter{})
	suite.NoError(err)
	suite.Len(all, 3)

	pending, err := suite.store.Orders().List(ctx, repository.OrderFilter{Status: domain.StatusPending, Limit: 1})
	suite.NoError(err)
	suite.Len(pending, 1)

	n, err := suite.store.Orders().Count(ctx, domain.StatusPending)
	suite.NoError(err)
	suite.Equal(int64(2), n)

	since := time.Now().Add(-time.Hour)
	total, err := suite.store.Orders().SumTotalSince(ctx, since)
	suite.NoError(err)
	suite.True(decimal.NewFromInt(400).Equal(total), total.String())

	byStatus, err := suite.store.Orders().CountByStatusSince(ctx, since)
	suite.NoError(err)
	suite.Equal(map[domain.OrderStatus]int64{domain.StatusPending: 2, domain.StatusDelivered: 1}, byStatus)

	none, err := suite.store.Orders().SumTotalSince(ctx, time.Now().Add(time.Hour))
	suite.NoError(err)
	suite.True(none.IsZero())
}

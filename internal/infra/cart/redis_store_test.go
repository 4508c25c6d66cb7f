package cart

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSessionID = "sess-1"
	testCartTTL   = 24 * time.Hour
)

type RedisStoreTestSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *RedisStore
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (suite *RedisStoreTestSuite) SetupTest() {
	suite.mr = miniredis.RunT(suite.T())
	suite.store = NewRedisStore(NewRedisClient(suite.mr.Addr()), testCartTTL)
}

func strPtr(s string) *string { return &s }

func testItem(variantID string, qty int) domain.CartItem {
	return domain.CartItem{
		ProductID:   "p-1",
		VariantID:   strPtr(variantID),
		ProductName: "Linen Shirt",
		Size:        strPtr("M"),
		Quantity:    qty,
		UnitPrice:   decimal.NewFromInt(500),
	}
}

func (suite *RedisStoreTestSuite) items() []domain.CartItem {
	items, err := suite.store.Items(context.Background(), testSessionID)
	require.NoError(suite.T(), err)
	return items
}

func (suite *RedisStoreTestSuite) TestItems_Empty() {
	items := suite.items()
	assert.NotNil(suite.T(), items)
	assert.Empty(suite.T(), items)
}

func (suite *RedisStoreTestSuite) TestAdd_MergesSameLine() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-1", 2)))
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-1", 2)))

	items := suite.items()
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), 4, items[0].Quantity)
	assert.Equal(suite.T(), "Linen Shirt", items[0].ProductName)
	assert.True(suite.T(), decimal.NewFromInt(500).Equal(items[0].UnitPrice))
	assert.Equal(suite.T(), "M", *items[0].Size)
}

func (suite *RedisStoreTestSuite) TestAdd_DistinctVariantsAreSeparateLines() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-2", 1)))
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-1", 3)))

	items := suite.items()
	require.Len(suite.T(), items, 2)
	assert.Equal(suite.T(), "v-1", *items[0].VariantID)
	assert.Equal(suite.T(), 3, items[0].Quantity)
	assert.Equal(suite.T(), "v-2", *items[1].VariantID)
}

func (suite *RedisStoreTestSuite) TestAdd_RefreshesTTL() {
	require.NoError(suite.T(), suite.store.Add(context.Background(), testSessionID, testItem("v-1", 1)))

	assert.Equal(suite.T(), testCartTTL, suite.mr.TTL(qtyKey(testSessionID)))
	assert.Equal(suite.T(), testCartTTL, suite.mr.TTL(linesKey(testSessionID)))

	suite.mr.FastForward(testCartTTL + time.Second)
	assert.Empty(suite.T(), suite.items())
}

func (suite *RedisStoreTestSuite) TestSetQuantity() {
	tests := []struct {
		name          string
		lineKey       string
		quantity      int
		expectedErr   error
		expectedLines int
		expectedQty   int
	}{
		{name: "update", lineKey: "p-1:v-1", quantity: 7, expectedLines: 1, expectedQty: 7},
		{name: "zero removes the line", lineKey: "p-1:v-1", quantity: 0, expectedLines: 0},
		{name: "negative removes the line", lineKey: "p-1:v-1", quantity: -1, expectedLines: 0},
		{name: "unknown line", lineKey: "p-1:v-9", quantity: 1, expectedErr: ErrLineNotFound, expectedLines: 1, expectedQty: 2},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mr.FlushAll()
			ctx := context.Background()
			require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-1", 2)))

			err := suite.store.SetQuantity(ctx, testSessionID, tt.lineKey, tt.quantity)

			if tt.expectedErr != nil {
				assert.ErrorIs(suite.T(), err, tt.expectedErr)
			} else {
				assert.NoError(suite.T(), err)
			}
			items := suite.items()
			require.Len(suite.T(), items, tt.expectedLines)
			if tt.expectedLines > 0 {
				assert.Equal(suite.T(), tt.expectedQty, items[0].Quantity)
			}
		})
	}
}

func (suite *RedisStoreTestSuite) TestRemoveAndClear() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-1", 1)))
	require.NoError(suite.T(), suite.store.Add(ctx, testSessionID, testItem("v-2", 1)))
	require.NoError(suite.T(), suite.store.Add(ctx, "sess-2", testItem("v-1", 1)))

	require.NoError(suite.T(), suite.store.Remove(ctx, testSessionID, "p-1:v-1"))
	items := suite.items()
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), "v-2", *items[0].VariantID)

	require.NoError(suite.T(), suite.store.Clear(ctx, testSessionID))
	assert.Empty(suite.T(), suite.items())
	assert.False(suite.T(), suite.mr.Exists(qtyKey(testSessionID)))

	other, err := suite.store.Items(ctx, "sess-2")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), other, 1)
}

func (suite *RedisStoreTestSuite) TestItems_ServerDown() {
	suite.mr.Close()
	_, err := suite.store.Items(context.Background(), testSessionID)
	assert.Error(suite.T(), err)
}

func TestNewRedisClient_PoolSettings(t *testing.T) {
	opts := NewRedisClient("localhost:6379").Options()

	assert.Equal(t, 50, opts.PoolSize)
	assert.Equal(t, 5, opts.MinIdleConns)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)
}

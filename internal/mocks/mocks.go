package mocks

import (
	"context"
	"io"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStore hands out its mock repositories; Transaction runs fn against itself
// unless an error is configured with On("Transaction").
type MockStore struct {
	mock.Mock
	OrderRepo   *MockOrderRepository
	VariantRepo *MockVariantRepository
	ProductRepo *MockProductRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		OrderRepo:   new(MockOrderRepository),
		VariantRepo: new(MockVariantRepository),
		ProductRepo: new(MockProductRepository),
	}
}

func (m *MockStore) Orders() repository.OrderRepository     { return m.OrderRepo }
func (m *MockStore) Variants() repository.VariantRepository { return m.VariantRepo }
func (m *MockStore) Products() repository.ProductRepository { return m.ProductRepo }

func (m *MockStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	m.Called(ctx)
	return fn(m)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveItems(ctx context.Context, items []domain.OrderItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, status domain.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) CountByStatusSince(ctx context.Context, since time.Time) (map[domain.OrderStatus]int64, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.OrderStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) HasItemsForProduct(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) DecrementClamped(ctx context.Context, variantID string, qty int) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *MockVariantRepository) Reserve(ctx context.Context, variantID string, qty int) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *MockVariantRepository) Restore(ctx context.Context, variantID string, qty int) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

func (m *MockVariantRepository) FindByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductVariant), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindActiveBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var b []byte
	if v := args.Get(0); v != nil {
		b = v.([]byte)
	}
	return b, args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartStore) Add(ctx context.Context, sessionID string, item domain.CartItem) error {
	args := m.Called(ctx, sessionID, item)
	return args.Error(0)
}

func (m *MockCartStore) SetQuantity(ctx context.Context, sessionID, lineKey string, quantity int) error {
	args := m.Called(ctx, sessionID, lineKey, quantity)
	return args.Error(0)
}

func (m *MockCartStore) Remove(ctx context.Context, sessionID, lineKey string) error {
	args := m.Called(ctx, sessionID, lineKey)
	return args.Error(0)
}

func (m *MockCartStore) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockBlobClient struct {
	mock.Mock
}

func (m *MockBlobClient) Put(ctx context.Context, pathname, contentType string, body io.Reader) (*infra.BlobInfo, error) {
	args := m.Called(ctx, pathname, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.BlobInfo), args.Error(1)
}

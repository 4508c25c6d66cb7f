package repository

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate record")
)

type OrderFilter struct {
	Status domain.OrderStatus
	Limit  int
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	SaveItems(ctx context.Context, items []domain.OrderItem) error
	// Delete removes the order and any of its items.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Count(ctx context.Context, status domain.OrderStatus) (int64, error)
	SumTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	CountByStatusSince(ctx context.Context, since time.Time) (map[domain.OrderStatus]int64, error)
	HasItemsForProduct(ctx context.Context, productID string) (bool, error)
}

type VariantRepository interface {
	// DecrementClamped sets stock to max(0, stock-qty) in one statement.
	// Missing variants are not an error.
	DecrementClamped(ctx context.Context, variantID string, qty int) error
	// Reserve decrements stock only when stock >= qty, else ErrInsufficientStock.
	Reserve(ctx context.Context, variantID string, qty int) error
	Restore(ctx context.Context, variantID string, qty int) error
	FindByID(ctx context.Context, id string) (*domain.ProductVariant, error)
}

const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

type ProductQuery struct {
	CategorySlug    string
	SubcategorySlug string
	Sort            string
}

type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]domain.Product, error)
	FindActiveBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int64, error)
}

// Store groups the repositories over one backing database. Transaction runs fn
// against a Store bound to a single transaction; returning an error rolls it back.
type Store interface {
	Orders() OrderRepository
	Variants() VariantRepository
	Products() ProductRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

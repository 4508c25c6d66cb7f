package gormrepo

import (
	"context"

	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type store struct {
	db       *gorm.DB
	orders   repository.OrderRepository
	variants repository.VariantRepository
	products repository.ProductRepository
}

func NewStore(db *gorm.DB) repository.Store {
	return &store{
		db:       db,
		orders:   NewOrderRepository(db),
		variants: NewVariantRepository(db),
		products: NewProductRepository(db),
	}
}

func (s *store) Orders() repository.OrderRepository     { return s.orders }
func (s *store) Variants() repository.VariantRepository { return s.variants }
func (s *store) Products() repository.ProductRepository { return s.products }

func (s *store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

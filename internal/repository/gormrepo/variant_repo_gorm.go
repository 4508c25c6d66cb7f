package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type variantRepo struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) repository.VariantRepository {
	return &variantRepo{db: db}
}

func (r *variantRepo) DecrementClamped(ctx context.Context, variantID string, qty int) error {
	err := r.db.WithContext(ctx).Model(&domain.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", gorm.Expr(
			"CASE WHEN stock_quantity > ? THEN stock_quantity - ? ELSE 0 END", qty, qty,
		)).Error
	if err != nil {
		return fmt.Errorf("decrement stock of variant %s: %w", variantID, err)
	}
	return nil
}

func (r *variantRepo) Reserve(ctx context.Context, variantID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("reserve stock of variant %s: %w", variantID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant %s: %w", variantID, repository.ErrInsufficientStock)
	}
	return nil
}

func (r *variantRepo) Restore(ctx context.Context, variantID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
	if err != nil {
		return fmt.Errorf("restore stock of variant %s: %w", variantID, err)
	}
	return nil
}

func (r *variantRepo) FindByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

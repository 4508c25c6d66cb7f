package gormrepo

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Category").
		Preload("Subcategory").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		Preload("Variants")
}

func (r *productRepo) List(ctx context.Context, pq repository.ProductQuery) ([]domain.Product, error) {
	db := r.db.WithContext(ctx)
	q := withDetails(db.Model(&domain.Product{})).Where("is_active = ?", true)

	// unknown slugs leave the filter off
	if pq.CategorySlug != "" {
		var c domain.Category
		if err := db.Where("slug = ?", pq.CategorySlug).First(&c).Error; err == nil {
			q = q.Where("category_id = ?", c.ID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if pq.SubcategorySlug != "" {
		var s domain.Subcategory
		if err := db.Where("slug = ?", pq.SubcategorySlug).First(&s).Error; err == nil {
			q = q.Where("subcategory_id = ?", s.ID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	switch pq.Sort {
	case repository.SortPriceLow:
		q = q.Order("base_price ASC")
	case repository.SortPriceHigh:
		q = q.Order("base_price DESC")
	case repository.SortName:
		q = q.Order("name ASC")
	default:
		q = q.Order("created_at DESC")
	}

	var out []domain.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindActiveBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	err := withDetails(r.db.WithContext(ctx)).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	// items are written separately by SaveItems
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if order.ID == "" {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) SaveItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := db.Where("id = ?", id).Delete(&domain.Order{}).Error; err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []domain.Order
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Count(ctx context.Context, status domain.OrderStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *orderRepo) SumTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_at >= ?", since).
		Select("SUM(total_amount)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *orderRepo) CountByStatusSince(ctx context.Context, since time.Time) (map[domain.OrderStatus]int64, error) {
	type row struct {
		Status domain.OrderStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_at >= ?", since).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.N
	}
	return out, nil
}

func (r *orderRepo) HasItemsForProduct(ctx context.Context, productID string) (bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Where("product_id = ?", productID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid status")
)

const statsWindow = 30 * 24 * time.Hour

type DashboardStats struct {
	TotalProducts  int64                        `json:"totalProducts"`
	TotalOrders    int64                        `json:"totalOrders"`
	PendingOrders  int64                        `json:"pendingOrders"`
	RecentRevenue  decimal.Decimal              `json:"recentRevenue"`
	OrdersByStatus map[domain.OrderStatus]int64 `json:"ordersByStatus"`
}

type AdminService struct {
	store   repository.Store
	catalog *CatalogService
	log     zerolog.Logger
	now     func() time.Time
}

// NewAdminService uses catalog to invalidate cached product detail; it may be nil.
func NewAdminService(store repository.Store, catalog *CatalogService, log zerolog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		catalog: catalog,
		log:     log.With().Str("component", "admin").Logger(),
		now:     time.Now,
	}
}

func (s *AdminService) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	f := repository.OrderFilter{}
	if status != "" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		f.Status = st
	}
	orders, err := s.store.Orders().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *AdminService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	items, err := s.store.Orders().FindItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	order.Items = items
	return order, nil
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, id, status string) error {
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return ErrInvalidStatus
	}
	if err := s.store.Orders().UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	s.log.Info().Str("order_id", id).Str("status", status).Msg("order status updated")
	return nil
}

// SetProductActive flips a product's visibility and drops its cached detail.
func (s *AdminService) SetProductActive(ctx context.Context, id string, active bool) error {
	products := s.store.Products()
	if err := products.SetActive(ctx, id, active); err != nil {
		// an update matching no row is not a failure
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug().Str("product_id", id).Msg("product status update matched no rows")
			return nil
		}
		return err
	}
	if s.catalog != nil {
		if p, err := products.FindByID(ctx, id); err == nil && p != nil {
			s.catalog.Invalidate(ctx, p.Slug)
		}
	}
	s.log.Info().Str("product_id", id).Bool("is_active", active).Msg("product status updated")
	return nil
}

// ProductHasOrders reports whether any order item references the product.
func (s *AdminService) ProductHasOrders(ctx context.Context, productID string) (bool, error) {
	return s.store.Orders().HasItemsForProduct(ctx, productID)
}

func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	since := s.now().Add(-statsWindow)
	out := &DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalProducts, err = s.store.Products().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalOrders, err = s.store.Orders().Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		out.PendingOrders, err = s.store.Orders().Count(gctx, domain.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		out.RecentRevenue, err = s.store.Orders().SumTotalSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		out.OrdersByStatus, err = s.store.Orders().CountByStatusSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.OrdersByStatus == nil {
		out.OrdersByStatus = map[domain.OrderStatus]int64{}
	}
	return out, nil
}

// Package memory is an in-process repository.Store for local runs and tests.
// Every operation is serialised under one mutex; Transaction restores a snapshot
// when fn fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	orders        map[string]domain.Order
	items         map[string][]domain.OrderItem
	variants      map[string]domain.ProductVariant
	products      map[string]domain.Product
	images        map[string][]domain.ProductImage
	categories    map[string]domain.Category
	subcategories map[string]domain.Subcategory
}

func (s *state) clone() *state {
	c := &state{
		orders:        make(map[string]domain.Order, len(s.orders)),
		items:         make(map[string][]domain.OrderItem, len(s.items)),
		variants:      make(map[string]domain.ProductVariant, len(s.variants)),
		products:      make(map[string]domain.Product, len(s.products)),
		images:        make(map[string][]domain.ProductImage, len(s.images)),
		categories:    make(map[string]domain.Category, len(s.categories)),
		subcategories: make(map[string]domain.Subcategory, len(s.subcategories)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]domain.OrderItem(nil), v...)
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.images {
		c.images[k] = append([]domain.ProductImage(nil), v...)
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.subcategories {
		c.subcategories[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		st: &state{
			orders:        map[string]domain.Order{},
			items:         map[string][]domain.OrderItem{},
			variants:      map[string]domain.ProductVariant{},
			products:      map[string]domain.Product{},
			images:        map[string][]domain.ProductImage{},
			categories:    map[string]domain.Category{},
			subcategories: map[string]domain.Subcategory{},
		},
		now: time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Orders() repository.OrderRepository     { return orderRepo{s} }
func (s *Store) Variants() repository.VariantRepository { return variantRepo{s} }
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// AddCategory, AddSubcategory, AddProduct and AddVariant seed catalog rows.
func (s *Store) AddCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.st.categories[c.ID] = c
}

func (s *Store) AddSubcategory(c domain.Subcategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.st.subcategories[c.ID] = c
}

func (s *Store) AddProduct(p domain.Product) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.UpdatedAt = p.CreatedAt
	for _, v := range p.Variants {
		v.ProductID = p.ID
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		s.st.variants[v.ID] = v
	}
	p.Variants = nil
	images := make([]domain.ProductImage, 0, len(p.Images))
	for _, img := range p.Images {
		img.ProductID = p.ID
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		if img.CreatedAt.IsZero() {
			img.CreatedAt = p.CreatedAt
		}
		images = append(images, img)
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].DisplayOrder < images[j].DisplayOrder })
	s.st.images[p.ID] = images
	p.Images = nil
	s.st.products[p.ID] = p
	return p.ID
}

func (s *Store) AddVariant(v domain.ProductVariant) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	s.st.variants[v.ID] = v
	return v.ID
}

// ItemCount is the number of order item rows across all orders.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, items := range s.st.items {
		n += len(items)
	}
	return n
}

type orderRepo struct{ s *Store }

func (r orderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for _, o := range r.s.st.orders {
		if o.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	order.CreatedAt, order.UpdatedAt = now, now
	stored := *order
	stored.Items = nil
	r.s.st.orders[order.ID] = stored
	return nil
}

func (r orderRepo) SaveItems(ctx context.Context, items []domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range items {
		if _, ok := r.s.st.orders[it.OrderID]; !ok {
			return repository.ErrNotFound
		}
	}
	now := r.s.now()
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.CreatedAt = now
		r.s.st.items[it.OrderID] = append(r.s.st.items[it.OrderID], it)
	}
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.items, id)
	delete(r.s.st.orders, id)
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) FindItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.OrderItem(nil), r.s.st.items[orderID]...), nil
}

func (r orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Order, 0, len(r.s.st.orders))
	for _, o := range r.s.st.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.s.now()
	r.s.st.orders[id] = o
	return nil
}

func (r orderRepo) Count(ctx context.Context, status domain.OrderStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, o := range r.s.st.orders {
		if status == "" || o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r orderRepo) SumTotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, o := range r.s.st.orders {
		if !o.CreatedAt.Before(since) {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r orderRepo) CountByStatusSince(ctx context.Context, since time.Time) (map[domain.OrderStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[domain.OrderStatus]int64{}
	for _, o := range r.s.st.orders {
		if !o.CreatedAt.Before(since) {
			out[o.Status]++
		}
	}
	return out, nil
}

func (r orderRepo) HasItemsForProduct(ctx context.Context, productID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, items := range r.s.st.items {
		for _, it := range items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type variantRepo struct{ s *Store }

func (r variantRepo) DecrementClamped(ctx context.Context, variantID string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.st.variants[variantID]
	if !ok {
		return nil
	}
	v.StockQuantity = domain.ClampedStock(v.StockQuantity, qty)
	r.s.st.variants[variantID] = v
	return nil
}

func (r variantRepo) Reserve(ctx context.Context, variantID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.st.variants[variantID]
	if !ok || v.StockQuantity < qty {
		return repository.ErrInsufficientStock
	}
	v.StockQuantity -= qty
	r.s.st.variants[variantID] = v
	return nil
}

func (r variantRepo) Restore(ctx context.Context, variantID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.st.variants[variantID]
	if !ok {
		return nil
	}
	v.StockQuantity += qty
	r.s.st.variants[variantID] = v
	return nil
}

func (r variantRepo) FindByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.st.variants[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type productRepo struct{ s *Store }

// details attaches category, images and variants; caller holds the lock.
func (r productRepo) details(p domain.Product) domain.Product {
	if c, ok := r.s.st.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	if p.SubcategoryID != nil {
		if sc, ok := r.s.st.subcategories[*p.SubcategoryID]; ok {
			p.Subcategory = &sc
		}
	}
	p.Images = append([]domain.ProductImage(nil), r.s.st.images[p.ID]...)
	p.Variants = nil
	for _, v := range r.s.st.variants {
		if v.ProductID == p.ID {
			p.Variants = append(p.Variants, v)
		}
	}
	sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].ID < p.Variants[j].ID })
	return p
}

func (r productRepo) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	categoryID, subcategoryID := "", ""
	for _, c := range r.s.st.categories {
		if q.CategorySlug != "" && c.Slug == q.CategorySlug {
			categoryID = c.ID
		}
	}
	for _, sc := range r.s.st.subcategories {
		if q.SubcategorySlug != "" && sc.Slug == q.SubcategorySlug {
			subcategoryID = sc.ID
		}
	}

	out := make([]domain.Product, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		if !p.IsActive {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if subcategoryID != "" && (p.SubcategoryID == nil || *p.SubcategoryID != subcategoryID) {
			continue
		}
		out = append(out, r.details(p))
	}

	switch q.Sort {
	case repository.SortPriceLow:
		sort.Slice(out, func(i, j int) bool { return out[i].BasePrice.LessThan(out[j].BasePrice) })
	case repository.SortPriceHigh:
		sort.Slice(out, func(i, j int) bool { return out[i].BasePrice.GreaterThan(out[j].BasePrice) })
	case repository.SortName:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out, nil
}

func (r productRepo) FindActiveBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.products {
		if p.Slug == slug && p.IsActive {
			d := r.details(p)
			return &d, nil
		}
	}
	return nil, nil
}

func (r productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	p.UpdatedAt = r.s.now()
	r.s.st.products[id] = p
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.st.products)), nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/config"
	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

var validate = validator.New()

// Stage names a step of order placement; it is logged on every transition.
type Stage string

const (
	StageValidate    Stage = "validating"
	StageCreateOrder Stage = "creating_order"
	StageCreateItems Stage = "creating_items"
	StageAdjustStock Stage = "adjusting_stock"
	StageDone        Stage = "done"
)

// StageError is a store failure at one stage of order placement.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("checkout %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type CheckoutRequest struct {
	CustomerName       string            `json:"customerName" validate:"required"`
	CustomerEmail      string            `json:"customerEmail" validate:"required"`
	CustomerPhone      string            `json:"customerPhone" validate:"required"`
	ShippingAddress    string            `json:"shippingAddress" validate:"required"`
	ShippingCity       string            `json:"shippingCity" validate:"required"`
	ShippingPostalCode string            `json:"shippingPostalCode" validate:"required"`
	ShippingCountry    string            `json:"shippingCountry"`
	Notes              *string           `json:"notes"`
	Items              []domain.CartItem `json:"items" validate:"required,min=1"`
	TotalAmount        decimal.Decimal   `json:"totalAmount"`
}

type CheckoutResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	// Replayed marks a result served from the idempotency cache.
	Replayed bool `json:"-"`
}

// CheckoutOptions selects how the three writes are run. Mode is
// config.CheckoutModeSaga or config.CheckoutModeTransactional; StockPolicy is
// config.StockPolicyBestEffort or config.StockPolicyStrict.
type CheckoutOptions struct {
	Mode        string
	StockPolicy string
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

type OrderService struct {
	store     repository.Store
	publisher EventPublisher
	idem      cache.IdempotencyStoreInterface
	opts      CheckoutOptions
	log       zerolog.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

func NewOrderService(store repository.Store, pub EventPublisher, opts CheckoutOptions, log zerolog.Logger) *OrderService {
	if opts.Mode == "" {
		opts.Mode = config.CheckoutModeSaga
	}
	if opts.StockPolicy == "" {
		opts.StockPolicy = config.StockPolicyBestEffort
	}
	return &OrderService{
		store:     store,
		publisher: pub,
		opts:      opts,
		log:       log.With().Str("component", "checkout").Logger(),
		now:       time.Now,
	}
}

func (u *OrderService) SetIdempotencyStore(s cache.IdempotencyStoreInterface) {
	u.idem = s
}

// PlaceOrder validates req, writes the order header, its items and the stock
// adjustments, and returns the new order's identity. idempotencyKey may be empty.
func (u *OrderService) PlaceOrder(ctx context.Context, req CheckoutRequest, idempotencyKey string) (*CheckoutResult, error) {
	if err := validate.Struct(req); err != nil {
		u.log.Debug().Err(err).Str("stage", string(StageValidate)).Msg("checkout rejected")
		return nil, ErrMissingFields
	}

	if idempotencyKey != "" && u.idem != nil {
		res, held, err := u.claim(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		if !held {
			idempotencyKey = ""
		}
	} else {
		idempotencyKey = ""
	}

	var (
		order *domain.Order
		err   error
	)
	if u.opts.Mode == config.CheckoutModeTransactional {
		order, err = u.placeTransactional(ctx, req)
	} else {
		order, err = u.placeSaga(ctx, req)
	}

	if err != nil {
		if idempotencyKey != "" {
			if relErr := u.idem.Release(ctx, idempotencyKey); relErr != nil {
				u.log.Warn().Err(relErr).Str("idempotency_key", idempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	res := &CheckoutResult{OrderID: order.ID, OrderNumber: order.OrderNumber}
	if idempotencyKey != "" {
		if b, mErr := json.Marshal(res); mErr == nil {
			if cErr := u.idem.Complete(ctx, idempotencyKey, b); cErr != nil {
				u.log.Warn().Err(cErr).Str("idempotency_key", idempotencyKey).Msg("failed to store checkout result")
			}
		}
	}

	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		u.publishOrderCreatedEvent(ctx, order)
	}()

	return res, nil
}

// claim returns a previously stored result for key, or nil when the request
// should run. held reports whether this call owns the pending marker. Cache
// outages degrade to running without idempotency.
func (u *OrderService) claim(ctx context.Context, key string) (res *CheckoutResult, held bool, err error) {
	stored, claimed, err := u.idem.Claim(ctx, key)
	switch {
	case errors.Is(err, cache.ErrPending):
		return nil, false, ErrCheckoutInProgress
	case err != nil:
		u.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, continuing without it")
		return nil, false, nil
	case claimed:
		return nil, true, nil
	}

	var prev CheckoutResult
	if err := json.Unmarshal(stored, &prev); err != nil || prev.OrderID == "" {
		u.log.Warn().Str("idempotency_key", key).Msg("unreadable idempotency record, continuing without it")
		return nil, false, nil
	}
	prev.Replayed = true
	u.log.Info().Str("idempotency_key", key).Str("order_id", prev.OrderID).Msg("checkout replayed")
	return &prev, false, nil
}

func (u *OrderService) newOrder(req CheckoutRequest) *domain.Order {
	var notes *string
	if req.Notes != nil && *req.Notes != "" {
		notes = req.Notes
	}
	return &domain.Order{
		ID:                 uuid.NewString(),
		OrderNumber:        domain.NewOrderNumber(u.now()),
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingPostalCode: req.ShippingPostalCode,
		ShippingCountry:    req.ShippingCountry,
		TotalAmount:        req.TotalAmount,
		Status:             domain.StatusPending,
		Notes:              notes,
	}
}

func buildItems(orderID string, cart []domain.CartItem) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(cart))
	for _, c := range cart {
		items = append(items, domain.NewOrderItem(orderID, c))
	}
	return items
}

// placeSaga runs the stages as independent writes. An item failure deletes the
// header; a best-effort stock failure is logged and the order stands.
func (u *OrderService) placeSaga(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	orders := u.store.Orders()
	order := u.newOrder(req)
	log := u.log.With().Str("order_id", order.ID).Str("order_number", order.OrderNumber).Logger()

	log.Debug().Str("stage", string(StageCreateOrder)).Msg("checkout stage")
	if err := orders.Save(ctx, order); err != nil {
		log.Error().Err(err).Str("stage", string(StageCreateOrder)).Msg("error creating order")
		return nil, &StageError{Stage: StageCreateOrder, Err: err}
	}

	log.Debug().Str("stage", string(StageCreateItems)).Int("items", len(req.Items)).Msg("checkout stage")
	items := buildItems(order.ID, req.Items)
	if err := orders.SaveItems(ctx, items); err != nil {
		log.Error().Err(err).Str("stage", string(StageCreateItems)).Msg("error creating order items")
		u.deleteOrder(ctx, orders, order.ID, log)
		return nil, &StageError{Stage: StageCreateItems, Err: err}
	}
	order.Items = items

	log.Debug().Str("stage", string(StageAdjustStock)).Msg("checkout stage")
	if err := u.adjustStock(ctx, u.store.Variants(), req.Items, false, log); err != nil {
		u.deleteOrder(ctx, orders, order.ID, log)
		return nil, err
	}

	log.Info().Str("stage", string(StageDone)).Str("total", order.TotalAmount.String()).Msg("order placed")
	return order, nil
}

// placeTransactional runs all stages inside one store transaction.
func (u *OrderService) placeTransactional(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	var placed *domain.Order
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		order := u.newOrder(req)
		log := u.log.With().Str("order_id", order.ID).Str("order_number", order.OrderNumber).Logger()

		if err := tx.Orders().Save(ctx, order); err != nil {
			log.Error().Err(err).Str("stage", string(StageCreateOrder)).Msg("error creating order")
			return &StageError{Stage: StageCreateOrder, Err: err}
		}
		items := buildItems(order.ID, req.Items)
		if err := tx.Orders().SaveItems(ctx, items); err != nil {
			log.Error().Err(err).Str("stage", string(StageCreateItems)).Msg("error creating order items")
			return &StageError{Stage: StageCreateItems, Err: err}
		}
		order.Items = items
		if err := u.adjustStock(ctx, tx.Variants(), req.Items, true, log); err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("order_id", placed.ID).Str("order_number", placed.OrderNumber).
		Str("stage", string(StageDone)).Msg("order placed")
	return placed, nil
}

// adjustStock applies the configured stock policy to every line with a variant,
// one variant at a time. Inside a transaction nothing is swallowed or undone by hand.
func (u *OrderService) adjustStock(ctx context.Context, variants repository.VariantRepository, lines []domain.CartItem, inTx bool, log zerolog.Logger) error {
	if u.opts.StockPolicy != config.StockPolicyStrict {
		for _, it := range lines {
			if !it.HasVariant() {
				continue
			}
			if err := variants.DecrementClamped(ctx, *it.VariantID, it.Quantity); err != nil {
				if inTx {
					return &StageError{Stage: StageAdjustStock, Err: err}
				}
				log.Error().Err(err).Str("stage", string(StageAdjustStock)).
					Str("variant_id", *it.VariantID).Int("quantity", it.Quantity).
					Msg("stock decrement failed, order kept")
			}
		}
		return nil
	}

	type applied struct {
		variantID string
		qty       int
	}
	var done []applied
	for _, it := range lines {
		if !it.HasVariant() {
			continue
		}
		err := variants.Reserve(ctx, *it.VariantID, it.Quantity)
		if err == nil {
			done = append(done, applied{*it.VariantID, it.Quantity})
			continue
		}

		log.Warn().Err(err).Str("stage", string(StageAdjustStock)).
			Str("variant_id", *it.VariantID).Int("quantity", it.Quantity).Msg("stock reservation failed")
		if !inTx {
			for i := len(done) - 1; i >= 0; i-- {
				if rErr := variants.Restore(ctx, done[i].variantID, done[i].qty); rErr != nil {
					log.Error().Err(rErr).Str("variant_id", done[i].variantID).Int("quantity", done[i].qty).
						Msg("failed to restore stock")
				}
			}
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			return fmt.Errorf("variant %s: %w", *it.VariantID, ErrInsufficientStock)
		}
		return &StageError{Stage: StageAdjustStock, Err: err}
	}
	return nil
}

func (u *OrderService) deleteOrder(ctx context.Context, orders repository.OrderRepository, id string, log zerolog.Logger) {
	if err := orders.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("compensation failed, order header left behind")
		return
	}
	log.Warn().Msg("order deleted by compensation")
}

func (u *OrderService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	if u.publisher == nil {
		return
	}
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   u.now(),
	}
	if err := u.publisher.Publish(ctx, domain.EventOrderCreated, evt); err != nil {
		u.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish order.created")
		return
	}
	u.log.Debug().Str("order_id", order.ID).Msg("published order.created")
}

// Wait blocks until in-flight event publishes finish.
func (u *OrderService) Wait() {
	u.inflight.Wait()
}

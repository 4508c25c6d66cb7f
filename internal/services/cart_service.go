package services

import (
	"context"
	"errors"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cart"

	"github.com/rs/zerolog"
)

var (
	ErrCartUnavailable  = errors.New("cart store is not configured")
	ErrMissingSession   = errors.New("missing session id")
	ErrInvalidCartItem  = errors.New("invalid cart item")
	ErrCartLineNotFound = errors.New("cart line not found")
)

type CartService struct {
	store cart.StoreInterface
	log   zerolog.Logger
}

// NewCartService accepts a nil store; every call then fails with ErrCartUnavailable.
func NewCartService(store cart.StoreInterface, log zerolog.Logger) *CartService {
	return &CartService{store: store, log: log.With().Str("component", "cart").Logger()}
}

func (s *CartService) check(sessionID string) error {
	if s.store == nil {
		return ErrCartUnavailable
	}
	if sessionID == "" {
		return ErrMissingSession
	}
	return nil
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := s.check(sessionID); err != nil {
		return nil, err
	}
	items, err := s.store.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.NewCart(sessionID, items), nil
}

// AddItem merges item into the cart; a line with the same product and variant
// has its quantity increased.
func (s *CartService) AddItem(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error) {
	if err := s.check(sessionID); err != nil {
		return nil, err
	}
	if item.ProductID == "" || item.Quantity <= 0 || item.UnitPrice.IsNegative() {
		return nil, ErrInvalidCartItem
	}
	if err := s.store.Add(ctx, sessionID, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// UpdateQuantity sets the quantity of one line; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*domain.Cart, error) {
	if err := s.check(sessionID); err != nil {
		return nil, err
	}
	if err := s.store.SetQuantity(ctx, sessionID, lineKey, quantity); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, lineKey string) (*domain.Cart, error) {
	if err := s.check(sessionID); err != nil {
		return nil, err
	}
	if err := s.store.Remove(ctx, sessionID, lineKey); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.check(sessionID); err != nil {
		return err
	}
	return s.store.Clear(ctx, sessionID)
}

// ClearAfterCheckout empties the cart for sessionID, logging instead of failing.
func (s *CartService) ClearAfterCheckout(ctx context.Context, sessionID string) {
	if s.store == nil || sessionID == "" {
		return
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear cart after checkout")
	}
}

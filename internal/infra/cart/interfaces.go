package cart

import (
	"context"

	"storefront-service/internal/domain"
)

type StoreInterface interface {
	Items(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Add(ctx context.Context, sessionID string, item domain.CartItem) error
	SetQuantity(ctx context.Context, sessionID, lineKey string, quantity int) error
	Remove(ctx context.Context, sessionID, lineKey string) error
	Clear(ctx context.Context, sessionID string) error
}

var _ StoreInterface = (*RedisStore)(nil)

package domain

import (
	"github.com/shopspring/decimal"
)

// CartItem is a client-held cart line as submitted at checkout.
type CartItem struct {
	ProductID   string          `json:"productId"`
	VariantID   *string         `json:"variantId"`
	ProductName string          `json:"productName"`
	Size        *string         `json:"size"`
	Color       *string         `json:"color"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// LineKey identifies a cart line; adding the same product+variant merges quantities.
func (c CartItem) LineKey() string {
	v := ""
	if c.VariantID != nil {
		v = *c.VariantID
	}
	return c.ProductID + ":" + v
}

func (c CartItem) HasVariant() bool {
	return c.VariantID != nil && *c.VariantID != ""
}

type Cart struct {
	SessionID string          `json:"sessionId"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// NewCart totals the given lines.
func NewCart(sessionID string, items []CartItem) *Cart {
	c := &Cart{SessionID: sessionID, Items: items, Total: decimal.Zero}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	for _, it := range c.Items {
		c.Total = c.Total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		c.ItemCount += it.Quantity
	}
	return c
}

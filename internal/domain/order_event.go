package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

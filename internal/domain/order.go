package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

type Order struct {
	ID                 string          `json:"id" gorm:"type:char(36);primaryKey"`
	OrderNumber        string          `json:"order_number" gorm:"type:varchar(40);not null;uniqueIndex"`
	CustomerName       string          `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerEmail      string          `json:"customer_email" gorm:"type:varchar(255);not null"`
	CustomerPhone      string          `json:"customer_phone" gorm:"type:varchar(64)"`
	ShippingAddress    string          `json:"shipping_address" gorm:"type:text;not null"`
	ShippingCity       string          `json:"shipping_city" gorm:"type:varchar(128);not null"`
	ShippingPostalCode string          `json:"shipping_postal_code" gorm:"type:varchar(32);not null"`
	ShippingCountry    string          `json:"shipping_country" gorm:"type:varchar(128)"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status             OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes              *string         `json:"notes" gorm:"type:text"`
	Items              []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a snapshot of the purchased line; later product edits never touch it.
type OrderItem struct {
	ID          string          `json:"id" gorm:"type:char(36);primaryKey"`
	OrderID     string          `json:"order_id" gorm:"type:char(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:char(36);not null;index"`
	VariantID   *string         `json:"variant_id" gorm:"type:char(36)"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Size        *string         `json:"size" gorm:"type:varchar(32)"`
	Color       *string         `json:"color" gorm:"type:varchar(64)"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// NewOrderItem copies the cart line into an item of orderID and fixes
// subtotal = unit price * quantity.
func NewOrderItem(orderID string, c CartItem) OrderItem {
	return OrderItem{
		OrderID:     orderID,
		ProductID:   c.ProductID,
		VariantID:   c.VariantID,
		ProductName: c.ProductName,
		Size:        c.Size,
		Color:       c.Color,
		Quantity:    c.Quantity,
		UnitPrice:   c.UnitPrice,
		Subtotal:    c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity))),
	}
}

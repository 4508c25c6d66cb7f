package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(128);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(128);not null;uniqueIndex"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Subcategory struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	CategoryID string    `json:"category_id" gorm:"type:char(36);not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(128);not null"`
	Slug       string    `json:"slug" gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (c *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Product struct {
	ID            string           `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string           `json:"name" gorm:"type:varchar(255);not null"`
	Slug          string           `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description   *string          `json:"description" gorm:"type:text"`
	BasePrice     decimal.Decimal  `json:"base_price" gorm:"type:decimal(10,2);not null"`
	CategoryID    string           `json:"category_id" gorm:"type:char(36);not null;index"`
	SubcategoryID *string          `json:"subcategory_id" gorm:"type:char(36);index"`
	IsActive      bool             `json:"is_active" gorm:"not null;default:true;index"`
	Category      *Category        `json:"categories,omitempty" gorm:"foreignKey:CategoryID"`
	Subcategory   *Subcategory     `json:"subcategories,omitempty" gorm:"foreignKey:SubcategoryID"`
	Images        []ProductImage   `json:"product_images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants      []ProductVariant `json:"product_variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type ProductImage struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID    string    `json:"product_id" gorm:"type:char(36);not null;index"`
	ImageURL     string    `json:"image_url" gorm:"type:text;not null"`
	AltText      *string   `json:"alt_text" gorm:"type:varchar(255)"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// ProductVariant is a size/color combination with its own stock counter.
type ProductVariant struct {
	ID              string          `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID       string          `json:"product_id" gorm:"type:char(36);not null;index"`
	Size            *string         `json:"size" gorm:"type:varchar(32)"`
	Color           *string         `json:"color" gorm:"type:varchar(64)"`
	StockQuantity   int             `json:"stock_quantity" gorm:"not null;default:0"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" gorm:"type:decimal(10,2);not null;default:0"`
	SKU             *string         `json:"sku" gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ClampedStock is the stock left after selling qty units; it never goes below zero.
func ClampedStock(current, qty int) int {
	if current-qty < 0 {
		return 0
	}
	return current - qty
}

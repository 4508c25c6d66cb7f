package services

import (
	"storefront-service/internal/domain"
	"storefront-service/internal/repository/memory"

	"github.com/shopspring/decimal"
)

const (
	TestProductName = "Test Product"
	TestUnitPrice   = int64(500)
	TestVariantQty  = 5
)

func strPtr(s string) *string { return &s }

func CreateMockCheckout(items ...domain.CartItem) CheckoutRequest {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return CheckoutRequest{
		CustomerName:       "Ada Lovelace",
		CustomerEmail:      "ada@example.com",
		CustomerPhone:      "+44 20 7946 0000",
		ShippingAddress:    "12 Analytical Row",
		ShippingCity:       "London",
		ShippingPostalCode: "N1 9GU",
		ShippingCountry:    "GB",
		Items:              items,
		TotalAmount:        total,
	}
}

func CreateMockCartItem(productID string, variantID *string, qty int) domain.CartItem {
	return domain.CartItem{
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: TestProductName,
		Size:        strPtr("M"),
		Color:       strPtr("Black"),
		Quantity:    qty,
		UnitPrice:   decimal.NewFromInt(TestUnitPrice),
	}
}

// seedCatalog returns a memory store holding one active product with one
// variant of the given stock.
func seedCatalog(stock int) (store *memory.Store, productID, variantID string) {
	store = memory.NewStore()
	catID := "cat-1"
	store.AddCategory(domain.Category{ID: catID, Name: "Shirts", Slug: "shirts"})
	productID = store.AddProduct(domain.Product{
		Name:       TestProductName,
		Slug:       "test-product",
		BasePrice:  decimal.NewFromInt(TestUnitPrice),
		CategoryID: catID,
		IsActive:   true,
	})
	variantID = store.AddVariant(domain.ProductVariant{
		ProductID:     productID,
		Size:          strPtr("M"),
		Color:         strPtr("Black"),
		StockQuantity: stock,
	})
	return store, productID, variantID
}

package http

import "storefront-service/internal/services"

// Error bodies are part of the storefront contract and must not change.
const (
	msgMissingFields       = "Missing required fields"
	msgCreateOrderFailed   = "Failed to create order"
	msgCreateItemsFailed   = "Failed to create order items"
	msgUpdateStockFailed   = "Failed to update stock"
	msgInsufficientStock   = "Insufficient stock"
	msgCheckoutInProgress  = "Checkout already in progress"
	msgInternal            = "Internal server error"
	msgOrderNotFound       = "Order not found"
	msgProductNotFound     = "Product not found"
	msgInvalidStatus       = "Invalid status"
	msgProductStatusFailed = "Failed to update product status"
	msgCheckOrdersFailed   = "Failed to check orders"
	msgFetchProductsFailed = "Failed to fetch products"
	msgNoFiles             = "No files provided"
	msgTooManyFiles        = "Maximum 10 images allowed"
	msgUploadFailed        = "Upload failed"
	msgMissingSession      = "Missing session id"
	msgInvalidCartItem     = "Invalid cart item"
	msgCartLineNotFound    = "Cart item not found"
	msgCartUnavailable     = "Cart unavailable"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ToggleProductRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type CheckOrdersResponse struct {
	HasOrders bool `json:"hasOrders"`
}

type UpdateCartLineRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type UploadResponse struct {
	Files []services.UploadedFile `json:"files"`
}

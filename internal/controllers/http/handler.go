package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	orders  *services.OrderService
	catalog *services.CatalogService
	cart    *services.CartService
	admin   *services.AdminService
	uploads *services.UploadService
}

func NewHandler(
	orders *services.OrderService,
	catalog *services.CatalogService,
	cart *services.CartService,
	admin *services.AdminService,
	uploads *services.UploadService,
) *Handler {
	return &Handler{orders: orders, catalog: catalog, cart: cart, admin: admin, uploads: uploads}
}

// NewRouter builds the gin engine with the request-id, logging and recovery
// middleware and every route registered.
func NewRouter(h *Handler, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(RequestID(log), RequestLogger(), Recovery())
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.POST("/orders", h.CreateOrder)

	// one wildcard name per segment: :id is a slug for the detail route
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.PATCH("/products/:id/toggle-status", h.ToggleProductStatus)
	api.GET("/products/:id/check-orders", h.CheckProductOrders)
	api.POST("/upload-product-images", h.UploadProductImages)

	cart := api.Group("/cart")
	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddCartItem)
	cart.PATCH("/items/:lineKey", h.UpdateCartItem)
	cart.DELETE("/items/:lineKey", h.RemoveCartItem)

	admin := api.Group("/admin")
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/:id", h.GetOrder)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	admin.GET("/stats", h.Stats)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := zerolog.Ctx(ctx)

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("unreadable checkout body")
		abort(c, http.StatusInternalServerError, msgInternal)
		return
	}

	res, err := h.orders.PlaceOrder(ctx, req, c.GetHeader(HeaderIdempotencyKey))
	if err != nil {
		status, msg := checkoutError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("checkout failed")
		}
		abort(c, status, msg)
		return
	}

	if !res.Replayed {
		h.cart.ClearAfterCheckout(ctx, c.GetHeader(HeaderSessionID))
	}
	c.JSON(http.StatusOK, CreateOrderResponse{Success: true, OrderID: res.OrderID, OrderNumber: res.OrderNumber})
}

func checkoutError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict, msgInsufficientStock
	case errors.Is(err, services.ErrCheckoutInProgress):
		return http.StatusConflict, msgCheckoutInProgress
	}

	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case services.StageCreateOrder:
			return http.StatusInternalServerError, msgCreateOrderFailed
		case services.StageCreateItems:
			return http.StatusInternalServerError, msgCreateItemsFailed
		case services.StageAdjustStock:
			return http.StatusInternalServerError, msgUpdateStockFailed
		}
	}
	return http.StatusInternalServerError, msgInternal
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), repository.ProductQuery{
		CategorySlug:    c.Query("category"),
		SubcategorySlug: c.Query("subcategory"),
		Sort:            c.Query("sort"),
	})
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list products")
		abort(c, http.StatusInternalServerError, msgFetchProductsFailed)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		abort(c, http.StatusNotFound, msgProductNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("get product")
		abort(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ToggleProductStatus(c *gin.Context) {
	var req ToggleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err := h.admin.SetProductActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("toggle product status")
		abort(c, http.StatusInternalServerError, msgProductStatusFailed)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) CheckProductOrders(c *gin.Context) {
	has, err := h.admin.ProductHasOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("check product orders")
		abort(c, http.StatusInternalServerError, msgCheckOrdersFailed)
		return
	}
	c.JSON(http.StatusOK, CheckOrdersResponse{HasOrders: has})
}

func (h *Handler) UploadProductImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("unreadable multipart form")
		abort(c, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	headers := form.File["files"]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, services.UploadFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        opener(fh),
		})
	}

	uploaded, err := h.uploads.UploadProductImages(c.Request.Context(), files)
	switch {
	case errors.Is(err, services.ErrNoFiles):
		abort(c, http.StatusBadRequest, msgNoFiles)
	case errors.Is(err, services.ErrTooManyFiles):
		abort(c, http.StatusBadRequest, msgTooManyFiles)
	case err != nil:
		abort(c, http.StatusInternalServerError, msgUploadFailed)
	default:
		c.JSON(http.StatusOK, UploadResponse{Files: uploaded})
	}
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingSession):
		abort(c, http.StatusBadRequest, msgMissingSession)
	case errors.Is(err, services.ErrInvalidCartItem):
		abort(c, http.StatusBadRequest, msgInvalidCartItem)
	case errors.Is(err, services.ErrCartLineNotFound):
		abort(c, http.StatusNotFound, msgCartLineNotFound)
	case errors.Is(err, services.ErrCartUnavailable):
		abort(c, http.StatusServiceUnavailable, msgCartUnavailable)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("cart operation failed")
		abort(c, http.StatusInternalServerError, msgInternal)
	}
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.cart.Get(c.Request.Context(), c.GetHeader(HeaderSessionID))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		abort(c, http.StatusBadRequest, msgInvalidCartItem)
		return
	}
	cart, err := h.cart.AddItem(c.Request.Context(), c.GetHeader(HeaderSessionID), item)
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, msgInvalidCartItem)
		return
	}
	cart, err := h.cart.UpdateQuantity(c.Request.Context(), c.GetHeader(HeaderSessionID), c.Param("lineKey"), *req.Quantity)
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	cart, err := h.cart.RemoveItem(c.Request.Context(), c.GetHeader(HeaderSessionID), c.Param("lineKey"))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), c.GetHeader(HeaderSessionID)); err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.admin.ListOrders(c.Request.Context(), c.Query("status"))
	if errors.Is(err, services.ErrInvalidStatus) {
		abort(c, http.StatusBadRequest, msgInvalidStatus)
		return
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list orders")
		abort(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.admin.GetOrder(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrOrderNotFound) {
		abort(c, http.StatusNotFound, msgOrderNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("get order")
		abort(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, msgInvalidStatus)
		return
	}
	err := h.admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		abort(c, http.StatusBadRequest, msgInvalidStatus)
	case errors.Is(err, services.ErrOrderNotFound):
		abort(c, http.StatusNotFound, msgOrderNotFound)
	case err != nil:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("update order status")
		abort(c, http.StatusInternalServerError, msgInternal)
	default:
		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("dashboard stats")
		abort(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, stats)
}

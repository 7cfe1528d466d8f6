package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"printstore-api/internal/core/auth"
	"printstore-api/internal/features/cart/domain"
	"printstore-api/internal/features/cart/service"
)

// CartHandler handles HTTP requests for the user's cart.
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

type cartItemRequest struct {
	ProductID    int64  `json:"product_id"`
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selected_size"`
}

// GetCart godoc
// @Summary List the user's cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/cart [get]
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return unauthorized(c)
	}

	items, err := h.cartService.List(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load cart",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if items == nil {
		items = []domain.CartItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// AddItem godoc
// @Summary Add a product to the cart
// @Description Accumulates quantity on repeat adds; ?buyNow=true overwrites it
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body cartItemRequest true "Cart line"
// @Param buyNow query bool false "Overwrite quantity instead of accumulating"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/cart [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return unauthorized(c)
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "product_id is required",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	buyNow := c.QueryBool("buyNow")

	item, err := h.cartService.AddItem(c.Context(), user.ID, req.ProductID, req.Quantity, req.SelectedSize, buyNow)
	if err != nil {
		return h.cartError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// UpdateItem godoc
// @Summary Update the quantity of a cart line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body cartItemRequest true "Cart line with new quantity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/cart [put]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return unauthorized(c)
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "product_id is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	err := h.cartService.UpdateQuantity(c.Context(), user.ID, req.ProductID, req.SelectedSize, req.Quantity)
	if err != nil {
		return h.cartError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// RemoveItem godoc
// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param productId query int true "Product id"
// @Param selectedSize query string false "Selected size"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/cart [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return unauthorized(c)
	}

	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if err != nil || productID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "productId query parameter is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.cartService.RemoveItem(c.Context(), user.ID, productID, c.Query("selectedSize")); err != nil {
		return h.cartError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *CartHandler) cartError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)

	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID,
		})
	case errors.Is(err, domain.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "cart item not found",
			RayID:   rayID,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "cart operation failed",
			RayID:   rayID,
		})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Message: "authentication required",
		RayID:   c.Locals("requestid").(string),
	})
}

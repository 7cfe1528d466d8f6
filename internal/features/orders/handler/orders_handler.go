package handler

import (
	"printstore-api/internal/core/auth"
	"printstore-api/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
)

// OrdersHandler handles HTTP requests for the local order history.
type OrdersHandler struct {
	ordersService *service.OrdersService
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(ordersService *service.OrdersService) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// ListOrders godoc
// @Summary List the authenticated user's orders
// @Description Returns the user's order history, newest first, items included
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/orders [get]
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Message: "authentication required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	orders, err := h.ordersService.List(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load orders",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

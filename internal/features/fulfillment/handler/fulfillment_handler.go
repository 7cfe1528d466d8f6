package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"printstore-api/internal/core/auth"
	"printstore-api/internal/core/httpclient"
	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/fulfillment/domain"
	"printstore-api/internal/features/fulfillment/service"
)

// CartClearer empties a user's cart after a successful checkout.
// Implemented by the cart service; optional.
type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// FulfillmentHandler handles HTTP requests for checkout and vendor-side
// order views.
type FulfillmentHandler struct {
	fulfillmentService *service.FulfillmentService
	cart               CartClearer
	// development enables raw error detail in responses.
	development bool
}

// NewFulfillmentHandler creates a new FulfillmentHandler. cart may be nil.
func NewFulfillmentHandler(fulfillmentService *service.FulfillmentService, cart CartClearer, environment string) *FulfillmentHandler {
	return &FulfillmentHandler{
		fulfillmentService: fulfillmentService,
		cart:               cart,
		development:        environment == "development",
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Details lists individual problems for validation failures.
	Details []string `json:"details,omitempty"`
	// Help carries a remediation hint for recognized vendor rejections.
	Help string `json:"help,omitempty"`
	// Timestamp marks when the failure was observed.
	Timestamp string `json:"timestamp,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// Checkout godoc
// @Summary Place an order with the fulfillment vendor
// @Description Validates the submission, places it with Qikink and records it locally
// @Tags fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param checkout body domain.Checkout true "Checkout payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/checkout [post]
func (h *FulfillmentHandler) Checkout(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Message: "authentication required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	var checkout domain.Checkout
	if err := c.BodyParser(&checkout); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	result, err := h.fulfillmentService.Submit(c.Context(), user.ID, &checkout)
	if err != nil {
		return h.checkoutError(c, err)
	}

	if h.cart != nil {
		// A stale cart after a placed order is an annoyance, not a failure.
		if err := h.cart.Clear(c.Context(), user.ID); err != nil {
			logger.Get().Warn("Failed to clear cart after checkout",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"qikinkOrderId": result.OrderID,
		"orderNumber":   result.OrderNumber,
	})
}

// checkoutError maps workflow failures onto HTTP responses. Validation
// problems are listed in full; everything else stays generic unless the
// server runs in development mode.
func (h *FulfillmentHandler) checkoutError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "order validation failed",
			Details: valErr.Problems,
			RayID:   rayID,
		})
	}

	var vendorErr *domain.VendorError
	if errors.As(err, &vendorErr) {
		message := "order was rejected by the fulfillment provider"
		if h.development {
			message = vendorErr.Error()
		}
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Message:   message,
			Help:      vendorErr.Help,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RayID:     rayID,
		})
	}

	// Auth failures, exhausted retries and persistence failures all land
	// here: the buyer can do nothing about them, so the message stays
	// generic outside development.
	message := "failed to place order"
	if h.development {
		message = err.Error()
	}

	logger.Get().Error("Checkout failed",
		zap.String("ray_id", rayID),
		zap.Error(err),
	)

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RayID:     rayID,
	})
}

// QikinkOrderIDs godoc
// @Summary List the user's vendor order ids
// @Description Returns the Qikink order ids recorded for the user's orders
// @Tags fulfillment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/orders/qikink-ids [get]
func (h *FulfillmentHandler) QikinkOrderIDs(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Message: "authentication required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	ids, err := h.fulfillmentService.QikinkOrderIDs(c.Context(), user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load order ids",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if ids == nil {
		ids = []int64{}
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"qikinkOrderIds": ids,
		"count":          len(ids),
	})
}

// QikinkOrders godoc
// @Summary List the user's orders as the vendor sees them
// @Description Fetches the vendor order listing and returns the entries matching the user's recorded orders
// @Tags fulfillment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/orders/qikink [get]
func (h *FulfillmentHandler) QikinkOrders(c *fiber.Ctx) error {
	user, ok := auth.UserFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Message: "authentication required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	orders, err := h.fulfillmentService.Reconcile(c.Context(), user.ID)
	if err != nil {
		status := fiber.StatusInternalServerError
		message := "failed to load vendor orders"

		var authErr *domain.AuthError
		if errors.Is(err, httpclient.ErrExhaustedRetries) || errors.As(err, &authErr) {
			status = fiber.StatusBadGateway
			message = "fulfillment provider is unavailable"
		}
		if h.development {
			message = err.Error()
		}

		logger.Get().Error("Vendor order reconciliation failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)

		return c.Status(status).JSON(ErrorResponse{
			Message: message,
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"printstore-api/internal/features/pincode/domain"
	"printstore-api/internal/features/pincode/service"
)

// PincodeHandler handles HTTP requests for delivery serviceability checks.
type PincodeHandler struct {
	pincodeService *service.PincodeService
}

// NewPincodeHandler creates a new PincodeHandler.
func NewPincodeHandler(pincodeService *service.PincodeService) *PincodeHandler {
	return &PincodeHandler{
		pincodeService: pincodeService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

type checkPincodeRequest struct {
	Pincode string `json:"pincode"`
	// PaymentType is "cod", "prepaid" or "any" (default).
	PaymentType string `json:"paymentType"`
	// IncludeCouriers returns the per-courier breakdown when true.
	IncludeCouriers bool `json:"includeCouriers"`
}

// CheckPincode godoc
// @Summary Check delivery serviceability for a pincode
// @Description Returns whether the pincode is deliverable for the requested payment type
// @Tags pincode
// @Accept json
// @Produce json
// @Param request body checkPincodeRequest true "Pincode check"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/check-pincode [post]
func (h *PincodeHandler) CheckPincode(c *fiber.Ctx) error {
	var req checkPincodeRequest
	if err := c.BodyParser(&req); err != nil || req.Pincode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "pincode is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	serviceability, err := h.pincodeService.Check(c.Context(), req.Pincode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPincode):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   c.Locals("requestid").(string),
			})
		case errors.Is(err, domain.ErrPincodeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success":     true,
				"deliverable": false,
				"message":     "delivery is not available for this pincode",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Message: "failed to check pincode",
				RayID:   c.Locals("requestid").(string),
			})
		}
	}

	response := fiber.Map{
		"success":     true,
		"deliverable": serviceability.Deliverable(req.PaymentType),
		"pincode":     serviceability.Pincode,
		"city":        serviceability.City,
		"state":       serviceability.State,
		"cod":         serviceability.CODDelivery,
		"prepaid":     serviceability.PrepaidDelivery,
	}
	if req.IncludeCouriers && len(serviceability.Couriers) > 0 {
		response["couriers"] = serviceability.Couriers
		response["couriersCount"] = serviceability.CouriersCount
	}

	return c.JSON(response)
}

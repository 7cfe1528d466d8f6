package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/fulfillment/domain"
	"printstore-api/internal/features/fulfillment/ports"
	ordersdomain "printstore-api/internal/features/orders/domain"
	ordersports "printstore-api/internal/features/orders/ports"
)

// FulfillmentService drives the checkout-to-vendor workflow: it validates a
// submission, places it with the print-on-demand vendor, and records the
// accepted order locally so the storefront can answer for it later.
type FulfillmentService struct {
	tokens ports.TokenSource
	vendor ports.Vendor
	orders ordersports.OrderRepository
}

// NewFulfillmentService creates a new FulfillmentService.
func NewFulfillmentService(tokens ports.TokenSource, vendor ports.Vendor, orders ordersports.OrderRepository) *FulfillmentService {
	return &FulfillmentService{
		tokens: tokens,
		vendor: vendor,
		orders: orders,
	}
}

// Submit validates and places an order with the vendor, then records it
// locally. The vendor is never contacted when validation fails.
func (s *FulfillmentService) Submit(ctx context.Context, userID uuid.UUID, checkout *domain.Checkout) (*domain.VendorOrderResult, error) {
	if problems := checkout.Order.Validate(); len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	submission := checkout.Order.Normalize()

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.vendor.CreateOrder(ctx, token, submission)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, userID, checkout, result); err != nil {
		// The vendor already accepted this order; an unrecorded acceptance
		// needs operator attention, not a silent retry.
		recordErr := &domain.RecordError{
			QikinkOrderID: result.OrderID,
			OrderNumber:   result.OrderNumber,
			Err:           err,
		}
		logger.Get().Error("Vendor-accepted order not recorded locally",
			zap.Int64("qikink_order_id", result.OrderID),
			zap.String("order_number", result.OrderNumber),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, recordErr
	}

	logger.Get().Info("Order placed",
		zap.Int64("qikink_order_id", result.OrderID),
		zap.String("order_number", result.OrderNumber),
		zap.String("user_id", userID.String()),
	)

	return result, nil
}

func (s *FulfillmentService) record(ctx context.Context, userID uuid.UUID, checkout *domain.Checkout, result *domain.VendorOrderResult) error {
	address, err := json.Marshal(checkout.Order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	order := &ordersdomain.Order{
		UserID:          userID,
		QikinkOrderID:   result.OrderID,
		OrderNumber:     result.OrderNumber,
		Status:          "pending",
		PaymentMode:     string(checkout.Order.Gateway),
		TotalAmount:     checkout.Order.TotalValue(),
		Subtotal:        checkout.Subtotal.Amount(),
		Shipping:        checkout.Shipping.Amount(),
		Taxes:           checkout.Taxes.Amount(),
		CouponDiscount:  checkout.CouponDiscount.Amount(),
		CouponCode:      checkout.CouponCode,
		ShippingAddress: address,
	}

	for _, item := range checkout.CartItems {
		order.Items = append(order.Items, ordersdomain.OrderItem{
			ProductID:    item.ProductID,
			Quantity:     int(item.Quantity),
			Price:        item.Price.Amount(),
			SelectedSize: item.SelectedSize,
		})
	}

	return s.orders.CreateWithItems(ctx, order)
}

// QikinkOrderIDs returns the vendor order ids recorded for the user.
func (s *FulfillmentService) QikinkOrderIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return s.orders.QikinkOrderIDs(ctx, userID)
}

// Reconcile fetches the vendor's full order listing and returns only the
// entries belonging to the user's locally recorded orders, in the vendor's
// listing order. The vendor API has no per-user filter, so ownership is
// resolved against the local ledger.
func (s *FulfillmentService) Reconcile(ctx context.Context, userID uuid.UUID) ([]domain.VendorOrder, error) {
	ids, err := s.orders.QikinkOrderIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load local order ids: %w", err)
	}
	if len(ids) == 0 {
		// Nothing local to match against; skip the vendor round trip.
		return []domain.VendorOrder{}, nil
	}

	mine := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		mine[id] = struct{}{}
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	listing, err := s.vendor.ListOrders(ctx, token)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.VendorOrder, 0, len(ids))
	for _, order := range listing {
		if _, ok := mine[order.OrderID]; ok {
			matched = append(matched, order)
		}
	}

	logger.Get().Debug("Reconciled vendor orders",
		zap.String("user_id", userID.String()),
		zap.Int("local", len(ids)),
		zap.Int("vendor_listing", len(listing)),
		zap.Int("matched", len(matched)),
	)

	return matched, nil
}

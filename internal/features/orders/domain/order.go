package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the storefront's local record of a placed order. The vendor holds
// the fulfillment state; this record establishes ownership and the amounts
// charged at checkout.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	QikinkOrderID int64           `json:"qikink_order_id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	PaymentMode   string          `json:"payment_mode"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Taxes         decimal.Decimal `json:"taxes"`
	// CouponDiscount is the absolute amount taken off by CouponCode.
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	// ShippingAddress is stored as the raw JSON submitted at checkout.
	ShippingAddress []byte      `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is one purchased product line, snapshotted at checkout so later
// catalog edits do not rewrite order history.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	SelectedSize string          `json:"selected_size,omitempty"`
}

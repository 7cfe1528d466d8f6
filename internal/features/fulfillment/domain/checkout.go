package domain

import "github.com/shopspring/decimal"

// PurchasedItem is one cart line snapshotted at checkout. Prices come from
// the storefront, not the vendor, so later catalog edits cannot change what
// the buyer was charged.
type PurchasedItem struct {
	ProductID    int64      `json:"product_id"`
	Quantity     FlexInt    `json:"quantity"`
	Price        FlexString `json:"price"`
	SelectedSize string     `json:"selected_size,omitempty"`
}

// Checkout is the full storefront checkout payload: the vendor-facing order
// plus the local pricing breakdown and the purchased cart lines.
type Checkout struct {
	Order          OrderSubmission `json:"order"`
	CartItems      []PurchasedItem `json:"cart_items"`
	Subtotal       FlexString      `json:"subtotal"`
	Shipping       FlexString      `json:"shipping"`
	Taxes          FlexString      `json:"taxes"`
	CouponDiscount FlexString      `json:"coupon_discount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
}

// Amount parses a FlexString money field, treating empty as zero.
func (s FlexString) Amount() decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

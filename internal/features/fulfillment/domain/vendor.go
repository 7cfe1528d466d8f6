package domain

// VendorOrderResult is the vendor's acknowledgement of an accepted order.
type VendorOrderResult struct {
	// OrderID is the vendor-issued order id.
	OrderID int64 `json:"order_id"`
	// OrderNumber echoes the storefront's order number.
	OrderNumber string `json:"order_number"`
}

// VendorOrder is one entry of the vendor's order listing. The listing is
// global per merchant account; ownership is resolved locally.
type VendorOrder struct {
	OrderID         int64             `json:"order_id"`
	Number          string            `json:"number"`
	Status          string            `json:"status"`
	TotalOrderValue string            `json:"total_order_value"`
	LineItems       []VendorOrderLine `json:"line_items"`
	Shipping        *VendorShipping   `json:"shipping,omitempty"`
}

// VendorOrderLine is one product line of a vendor order listing entry.
type VendorOrderLine struct {
	SKU      string     `json:"sku"`
	Quantity FlexString `json:"quantity"`
	Price    FlexString `json:"price,omitempty"`
}

// VendorShipping is the delivery summary attached to a vendor order.
type VendorShipping struct {
	FirstName   string `json:"first_name"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Gateway is the payment mode reported to the fulfillment vendor.
type Gateway string

const (
	// GatewayPrepaid marks an order already paid through the storefront.
	GatewayPrepaid Gateway = "Prepaid"
	// GatewayCOD marks a cash-on-delivery order.
	GatewayCOD Gateway = "COD"
)

// Line item source modes, matching the vendor's search_from_my_products flag.
const (
	// SourceCustomDesign requires design artwork to be supplied.
	SourceCustomDesign = 0
	// SourceVendorCatalog references a product pre-registered with the vendor.
	SourceVendorCatalog = 1
)

// FlexString accepts JSON strings or numbers and normalizes to a string.
// Upstream callers serialize quantities and totals inconsistently.
type FlexString string

// UnmarshalJSON accepts `"2"`, `2` and `2.5` alike.
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	// Raw JSON number: keep its textual form.
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexInt accepts JSON numbers or numeric strings.
type FlexInt int

// UnmarshalJSON accepts `1` and `"1"` alike.
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", v, err)
		}
		*n = FlexInt(parsed)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// Design carries the artwork and placement metadata for a custom-printed item.
type Design struct {
	Code         string  `json:"design_code"`
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`
	PlacementSKU string  `json:"placement_sku"`
	DesignLink   string  `json:"design_link"`
	MockupLink   string  `json:"mockup_link"`
}

// LineItem is one product line of an order submission. Field names follow the
// vendor's order-create contract.
type LineItem struct {
	// SearchFromMyProducts selects catalog mode (1) or custom-design mode (0).
	SearchFromMyProducts FlexInt `json:"search_from_my_products"`
	// Quantity is transmitted as a string per the vendor contract.
	Quantity FlexString `json:"quantity"`
	SKU      string     `json:"sku"`
	// PrintTypeID is only meaningful in custom-design mode.
	PrintTypeID int      `json:"print_type_id,omitempty"`
	Designs     []Design `json:"designs,omitempty"`
}

// ShippingAddress is the vendor-facing delivery address.
type ShippingAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
}

// AddOn carries order-level packing flags. The vendor expects disabled flags
// to be sent as explicit zeroes, not omitted.
type AddOn struct {
	BoxPacking   FlexInt `json:"box_packing"`
	GiftWrap     FlexInt `json:"gift_wrap"`
	RushOrder    FlexInt `json:"rush_order"`
	CustomLetter string  `json:"custom_letter,omitempty"`
}

// OrderSubmission is a locally-assembled order ready for the vendor's
// order-create endpoint. It is immutable once constructed; Normalize returns
// a cleaned copy rather than mutating in place.
type OrderSubmission struct {
	OrderNumber     string          `json:"order_number"`
	QikinkShipping  FlexInt         `json:"qikink_shipping"`
	Gateway         Gateway         `json:"gateway"`
	TotalOrderValue FlexString      `json:"total_order_value"`
	LineItems       []LineItem      `json:"line_items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	AddOns          []AddOn         `json:"add_ons,omitempty"`
}

// Validate checks the submission shape and returns every violation found,
// so callers can display all problems at once. An empty slice means valid.
func (o *OrderSubmission) Validate() []string {
	var problems []string

	if o.OrderNumber == "" {
		problems = append(problems, "Order number is required")
	}
	if o.Gateway == "" {
		problems = append(problems, "Gateway is required")
	} else if o.Gateway != GatewayPrepaid && o.Gateway != GatewayCOD {
		problems = append(problems, fmt.Sprintf("Gateway must be %s or %s", GatewayPrepaid, GatewayCOD))
	}

	if o.TotalOrderValue == "" {
		problems = append(problems, "Total order value is required")
	} else if total, err := decimal.NewFromString(o.TotalOrderValue.String()); err != nil || total.IsNegative() {
		problems = append(problems, "Total order value must be a valid amount")
	}

	if len(o.LineItems) == 0 {
		problems = append(problems, "At least one line item is required")
	} else {
		for i, item := range o.LineItems {
			n := i + 1
			if item.SKU == "" {
				problems = append(problems, fmt.Sprintf("SKU is required for line item %d", n))
			}
			if item.Quantity == "" {
				problems = append(problems, fmt.Sprintf("Quantity is required for line item %d", n))
			} else if qty, err := strconv.Atoi(item.Quantity.String()); err != nil || qty <= 0 {
				problems = append(problems, fmt.Sprintf("Quantity must be a positive number for line item %d", n))
			}
			if item.SearchFromMyProducts == SourceCustomDesign && len(item.Designs) == 0 {
				problems = append(problems, fmt.Sprintf("Designs are required for line item %d when search_from_my_products is 0", n))
			}
		}
	}

	addr := o.ShippingAddress
	if addr == (ShippingAddress{}) {
		problems = append(problems, "Shipping address is required")
	} else {
		if addr.FirstName == "" {
			problems = append(problems, "First name is required")
		}
		if addr.Address1 == "" {
			problems = append(problems, "Address line 1 is required")
		}
		if addr.City == "" {
			problems = append(problems, "City is required")
		}
		if addr.Zip == "" {
			problems = append(problems, "ZIP code is required")
		}
		if addr.CountryCode == "" {
			problems = append(problems, "Country code is required")
		}
		if addr.Email == "" {
			problems = append(problems, "Email is required")
		}
		if addr.Phone == "" {
			problems = append(problems, "Phone is required")
		}
	}

	return problems
}

// Normalize returns a copy ready for transmission: catalog-mode line items
// are stripped of design fields, since the vendor rejects requests that mix
// catalog SKUs with custom-design metadata.
func (o *OrderSubmission) Normalize() *OrderSubmission {
	out := *o
	out.LineItems = make([]LineItem, len(o.LineItems))
	copy(out.LineItems, o.LineItems)

	for i := range out.LineItems {
		if out.LineItems[i].SearchFromMyProducts == SourceVendorCatalog {
			out.LineItems[i].Designs = nil
			out.LineItems[i].PrintTypeID = 0
		}
	}

	return &out
}

// TotalValue parses the order total as a decimal. Callers must Validate first.
func (o *OrderSubmission) TotalValue() decimal.Decimal {
	total, err := decimal.NewFromString(o.TotalOrderValue.String())
	if err != nil {
		return decimal.Zero
	}
	return total
}

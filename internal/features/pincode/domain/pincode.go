package domain

import (
	"encoding/json"
	"errors"
)

// ErrPincodeNotFound is returned when a pincode has no serviceability data.
var ErrPincodeNotFound = errors.New("pincode not found")

// Serviceability is the courier coverage aggregated for one pincode.
type Serviceability struct {
	Pincode         string `json:"pincode"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	CODDelivery     bool   `json:"cod_delivery"`
	PrepaidDelivery bool   `json:"prepaid_delivery"`
	Pickup          bool   `json:"pickup"`
	ReversePickup   bool   `json:"reverse_pickup"`
	CouriersCount   int    `json:"couriers_count"`
	// Couriers is the raw per-courier breakdown, returned only on request.
	Couriers json.RawMessage `json:"couriers,omitempty"`
}

// Deliverable reports whether the pincode can be served for the given
// payment type: "cod", "prepaid" or "any".
func (s *Serviceability) Deliverable(paymentType string) bool {
	switch paymentType {
	case "cod":
		return s.CODDelivery
	case "prepaid":
		return s.PrepaidDelivery
	default:
		return s.CODDelivery || s.PrepaidDelivery
	}
}

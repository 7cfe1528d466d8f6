package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports every violated field of an order submission.
// It is never retried; the caller fixes the input.
type ValidationError struct {
	// Problems lists one human-readable message per violation.
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order submission: %s", strings.Join(e.Problems, "; "))
}

// AuthError means the vendor credential or token exchange failed. This is a
// server misconfiguration or vendor outage, not a user input problem.
type AuthError struct {
	// Detail is the vendor's error payload, if present.
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "vendor authentication failed"
	}
	return fmt.Sprintf("vendor authentication failed: %s", e.Detail)
}

// VendorError means the vendor accepted the HTTP exchange but rejected the
// order semantics. Retrying an identical payload would fail identically.
type VendorError struct {
	// Status is the HTTP status returned by the vendor.
	Status int
	// Code is the vendor's error code, when one was supplied.
	Code string
	// Message is the vendor's error message.
	Message string
	// Help carries a plain-language remediation hint for recognized causes.
	Help string
}

func (e *VendorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("vendor rejected order (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("vendor rejected order (status %d): %s", e.Status, e.Message)
}

// RecordError means the vendor accepted the order but the local record write
// failed. The vendor now holds an order the storefront cannot account for;
// callers must treat this as an operational alert, not just a user error.
type RecordError struct {
	// QikinkOrderID is the vendor-issued id of the unrecorded order.
	QikinkOrderID int64
	// OrderNumber is the storefront's order number.
	OrderNumber string
	// Err is the underlying persistence failure.
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("order %s accepted by vendor (qikink id %d) but not recorded locally: %v",
		e.OrderNumber, e.QikinkOrderID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

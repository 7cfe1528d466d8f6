package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"printstore-api/internal/core/config"
	"printstore-api/internal/core/httpclient"
	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/fulfillment/domain"

	"go.uber.org/zap"
)

// skuHelp is the remediation hint for the vendor's invalid-SKU rejections.
const skuHelp = "Catalog-mode line items need a SKU registered in your Qikink account; " +
	"custom-design items need a valid Qikink catalog SKU plus design details."

// vendorErrorHelp maps recognized vendor error codes to remediation hints.
// Unmapped codes surface as a generic rejection.
var vendorErrorHelp = map[string]string{
	"INVALID_SKU":   skuHelp,
	"SKU_NOT_FOUND": skuHelp,
}

// QikinkAdapter implements the Vendor and TokenFetcher ports against the
// Qikink print-on-demand REST API. All calls go through a shared rate-limited
// executor, since Qikink enforces a per-account request budget.
type QikinkAdapter struct {
	// exec throttles and retries every outbound Qikink call.
	exec *httpclient.Executor
	// config holds the Qikink connection details.
	config config.QikinkConfig
	// baseURL is config.BaseURL with any trailing slash removed.
	baseURL string
}

// NewQikinkAdapter creates a new instance of QikinkAdapter.
func NewQikinkAdapter(cfg config.QikinkConfig) *QikinkAdapter {
	client := httpclient.NewClient(15 * time.Second)
	return &QikinkAdapter{
		exec:    httpclient.NewExecutor(client, cfg.MinRequestInterval(), cfg.MaxAttempts),
		config:  cfg,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// qikinkTokenResponse is the wire shape of the token endpoint.
type qikinkTokenResponse struct {
	// ClientID echoes the merchant client id.
	ClientID string `json:"ClientId"`
	// AccessToken is the bearer token for subsequent calls.
	AccessToken string `json:"Accesstoken"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
	// ErrorMsg is set on failure responses.
	ErrorMsg string `json:"error"`
}

// qikinkOrderResponse is the wire shape of the order-create endpoint.
type qikinkOrderResponse struct {
	// StatusCode is the vendor's own status string.
	StatusCode domain.FlexString `json:"status_code"`
	// Message is the vendor's human-readable outcome.
	Message string `json:"message"`
	// OrderID is the vendor-issued order id on success.
	OrderID int64 `json:"order_id"`
	// OrderNumber echoes the submitted order number.
	OrderNumber string `json:"order_number"`
	// ErrorMsg and Details are set on failure responses.
	ErrorMsg string          `json:"error"`
	Details  json.RawMessage `json:"details"`
}

// FetchToken exchanges client credentials for an access token.
func (a *QikinkAdapter) FetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"ClientId":      {a.config.ClientID},
		"client_secret": {a.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.exec.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}

	var wire qikinkTokenResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", 0, &domain.AuthError{Detail: fmt.Sprintf("malformed token response (status %d)", resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusOK || wire.AccessToken == "" {
		detail := wire.ErrorMsg
		if detail == "" {
			detail = fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)
		}
		return "", 0, &domain.AuthError{Detail: detail}
	}

	return wire.AccessToken, time.Duration(wire.ExpiresIn) * time.Second, nil
}

// CreateOrder submits an order to the vendor's order-create endpoint.
func (a *QikinkAdapter) CreateOrder(ctx context.Context, token string, order *domain.OrderSubmission) (*domain.VendorOrderResult, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/api/order/create", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	a.setAuthHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.exec.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	var wire qikinkOrderResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &domain.VendorError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("malformed order response: %s", truncate(body, 200)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || wire.OrderID == 0 {
		return nil, classifyRejection(resp.StatusCode, &wire)
	}

	orderNumber := wire.OrderNumber
	if orderNumber == "" {
		orderNumber = order.OrderNumber
	}

	logger.Get().Info("Qikink order created",
		zap.Int64("qikink_order_id", wire.OrderID),
		zap.String("order_number", orderNumber),
	)

	return &domain.VendorOrderResult{
		OrderID:     wire.OrderID,
		OrderNumber: orderNumber,
	}, nil
}

// ListOrders fetches the vendor's full order listing for the merchant account.
func (a *QikinkAdapter) ListOrders(ctx context.Context, token string) ([]domain.VendorOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/order", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing request: %w", err)
	}
	a.setAuthHeaders(req, token)

	resp, err := a.exec.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order listing request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order listing: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order listing returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return decodeOrderListing(body)
}

func (a *QikinkAdapter) setAuthHeaders(req *http.Request, token string) {
	req.Header.Set("ClientId", a.config.ClientID)
	req.Header.Set("Accesstoken", token)
}

// decodeOrderListing accepts both a bare array and a {"data": [...]} wrapper,
// since the vendor has shipped both shapes.
func decodeOrderListing(body []byte) ([]domain.VendorOrder, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var orders []domain.VendorOrder
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("failed to decode order listing: %w", err)
		}
		return orders, nil
	}

	var wrapper struct {
		Data []domain.VendorOrder `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode order listing: %w", err)
	}
	return wrapper.Data, nil
}

// classifyRejection maps a vendor failure payload onto a VendorError,
// attaching a remediation hint for recognized error codes.
func classifyRejection(status int, wire *qikinkOrderResponse) *domain.VendorError {
	message := wire.ErrorMsg
	if message == "" {
		message = wire.Message
	}
	if message == "" {
		message = "order rejected"
	}

	code := strings.ToUpper(wire.StatusCode.String())

	help := vendorErrorHelp[code]
	if help == "" && strings.Contains(strings.ToLower(message), "invalid sku") {
		help = skuHelp
	}

	return &domain.VendorError{
		Status:  status,
		Code:    code,
		Message: message,
		Help:    help,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

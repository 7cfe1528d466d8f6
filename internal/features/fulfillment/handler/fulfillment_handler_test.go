package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printstore-api/internal/core/auth"
	"printstore-api/internal/features/fulfillment/domain"
	"printstore-api/internal/features/fulfillment/service"
	ordersdomain "printstore-api/internal/features/orders/domain"
)

type mockTokenSource struct {
	token string
	err   error
}

func (m *mockTokenSource) Token(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

type mockVendor struct {
	createResult *domain.VendorOrderResult
	createErr    error
	createCalls  int
	listing      []domain.VendorOrder
	listErr      error
}

func (m *mockVendor) CreateOrder(ctx context.Context, token string, order *domain.OrderSubmission) (*domain.VendorOrderResult, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResult, nil
}

func (m *mockVendor) ListOrders(ctx context.Context, token string) ([]domain.VendorOrder, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listing, nil
}

type mockOrderRepository struct {
	created   []*ordersdomain.Order
	createErr error
	ids       []int64
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *ordersdomain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, order)
	return nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ordersdomain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepository) QikinkOrderIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return m.ids, nil
}

type mockCartClearer struct {
	cleared []uuid.UUID
	err     error
}

func (m *mockCartClearer) Clear(ctx context.Context, userID uuid.UUID) error {
	m.cleared = append(m.cleared, userID)
	return m.err
}

type testDeps struct {
	tokens *mockTokenSource
	vendor *mockVendor
	repo   *mockOrderRepository
	cart   *mockCartClearer
	user   auth.User
}

func newTestApp(deps *testDeps) *fiber.App {
	svc := service.NewFulfillmentService(deps.tokens, deps.vendor, deps.repo)
	h := NewFulfillmentHandler(svc, deps.cart, "production")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		c.Locals("auth_user", deps.user)
		return c.Next()
	})
	app.Post("/api/checkout", h.Checkout)
	app.Get("/api/orders/qikink-ids", h.QikinkOrderIDs)
	app.Get("/api/orders/qikink", h.QikinkOrders)
	return app
}

func defaultDeps() *testDeps {
	return &testDeps{
		tokens: &mockTokenSource{token: "tok"},
		vendor: &mockVendor{createResult: &domain.VendorOrderResult{OrderID: 987, OrderNumber: "ORD-3001"}},
		repo:   &mockOrderRepository{},
		cart:   &mockCartClearer{},
		user:   auth.User{ID: uuid.New(), Email: "asha@example.com"},
	}
}

func checkoutBody(t *testing.T) *bytes.Reader {
	t.Helper()
	payload := map[string]any{
		"order": map[string]any{
			"order_number":      "ORD-3001",
			"gateway":           "Prepaid",
			"total_order_value": 798,
			"line_items": []map[string]any{
				{"search_from_my_products": "1", "quantity": 2, "sku": "MVNeck-Wh-S"},
			},
			"shipping_address": map[string]any{
				"first_name":   "Asha",
				"address1":     "12 MG Road",
				"phone":        "9876543210",
				"email":        "asha@example.com",
				"city":         "Bengaluru",
				"province":     "Karnataka",
				"zip":          "560001",
				"country_code": "IN",
			},
		},
		"cart_items": []map[string]any{
			{"product_id": 42, "quantity": "2", "price": "399.00", "selected_size": "S"},
		},
		"subtotal": "798.00",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestCheckout_Success(t *testing.T) {
	deps := defaultDeps()
	app := newTestApp(deps)

	req := httptest.NewRequest("POST", "/api/checkout", checkoutBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success       bool   `json:"success"`
		QikinkOrderID int64  `json:"qikinkOrderId"`
		OrderNumber   string `json:"orderNumber"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(987), body.QikinkOrderID)
	assert.Equal(t, "ORD-3001", body.OrderNumber)

	// Tolerant coercion: numeric totals and string quantities both land.
	require.Len(t, deps.repo.created, 1)
	assert.Equal(t, "798", deps.repo.created[0].TotalAmount.String())

	assert.Equal(t, []uuid.UUID{deps.user.ID}, deps.cart.cleared)
}

func TestCheckout_ValidationListsEveryProblem(t *testing.T) {
	deps := defaultDeps()
	app := newTestApp(deps)

	payload, err := json.Marshal(map[string]any{"order": map[string]any{}})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Details, "Order number is required")
	assert.Contains(t, errResp.Details, "Gateway is required")
	assert.Contains(t, errResp.Details, "At least one line item is required")
	assert.Contains(t, errResp.Details, "Shipping address is required")
	assert.Equal(t, "test-ray-id", errResp.RayID)

	assert.Equal(t, 0, deps.vendor.createCalls)
	assert.Empty(t, deps.cart.cleared)
}

func TestCheckout_VendorRejection(t *testing.T) {
	deps := defaultDeps()
	deps.vendor.createErr = &domain.VendorError{
		Status:  400,
		Code:    "INVALID_SKU",
		Message: "Invalid SKU",
		Help:    "Check the SKU against your vendor account.",
	}
	app := newTestApp(deps)

	req := httptest.NewRequest("POST", "/api/checkout", checkoutBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "order was rejected by the fulfillment provider", errResp.Message)
	assert.NotEmpty(t, errResp.Help)
	assert.NotEmpty(t, errResp.Timestamp)
	assert.Empty(t, deps.cart.cleared)
}

func TestCheckout_RecordFailureStaysGeneric(t *testing.T) {
	deps := defaultDeps()
	deps.repo.createErr = errors.New("connection refused")
	app := newTestApp(deps)

	req := httptest.NewRequest("POST", "/api/checkout", checkoutBody(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "failed to place order", errResp.Message)
	assert.NotContains(t, errResp.Message, "connection refused")
	assert.NotEmpty(t, errResp.Timestamp)
}

func TestQikinkOrderIDs(t *testing.T) {
	deps := defaultDeps()
	deps.repo.ids = []int64{101, 102}
	app := newTestApp(deps)

	req := httptest.NewRequest("GET", "/api/orders/qikink-ids", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success        bool    `json:"success"`
		QikinkOrderIDs []int64 `json:"qikinkOrderIds"`
		Count          int     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, []int64{101, 102}, body.QikinkOrderIDs)
	assert.Equal(t, 2, body.Count)
}

func TestQikinkOrders_ReturnsMatchedListing(t *testing.T) {
	deps := defaultDeps()
	deps.repo.ids = []int64{101, 102}
	deps.vendor.listing = []domain.VendorOrder{
		{OrderID: 100}, {OrderID: 101}, {OrderID: 102}, {OrderID: 103},
	}
	app := newTestApp(deps)

	req := httptest.NewRequest("GET", "/api/orders/qikink", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                 `json:"success"`
		Orders  []domain.VendorOrder `json:"orders"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, int64(101), body.Orders[0].OrderID)
}

func TestQikinkOrders_VendorUnavailable(t *testing.T) {
	deps := defaultDeps()
	deps.repo.ids = []int64{101}
	deps.tokens.err = &domain.AuthError{Detail: "invalid client"}
	app := newTestApp(deps)

	req := httptest.NewRequest("GET", "/api/orders/qikink", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

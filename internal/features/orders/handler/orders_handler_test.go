package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printstore-api/internal/core/auth"
	"printstore-api/internal/features/orders/domain"
	"printstore-api/internal/features/orders/service"
)

// mockOrderRepository is a mock implementation of OrderRepository for testing.
type mockOrderRepository struct {
	orders  []domain.Order
	listErr error
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orders, nil
}

func (m *mockOrderRepository) QikinkOrderIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	return nil, nil
}

func newTestApp(repo *mockOrderRepository, user *auth.User) *fiber.App {
	h := NewOrdersHandler(service.NewOrdersService(repo))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		if user != nil {
			c.Locals("auth_user", *user)
		}
		return c.Next()
	})
	app.Get("/api/orders", h.ListOrders)
	return app
}

func TestOrdersHandler_ListOrders(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Email: "asha@example.com"}
	repo := &mockOrderRepository{
		orders: []domain.Order{
			{
				ID:            uuid.New(),
				UserID:        user.ID,
				OrderNumber:   "ORD-2001",
				QikinkOrderID: 987654,
				Status:        "confirmed",
				TotalAmount:   decimal.NewFromInt(499),
			},
		},
	}

	app := newTestApp(repo, user)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool           `json:"success"`
		Orders  []domain.Order `json:"orders"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "ORD-2001", body.Orders[0].OrderNumber)
}

func TestOrdersHandler_ListOrders_NoUser(t *testing.T) {
	app := newTestApp(&mockOrderRepository{}, nil)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOrdersHandler_ListOrders_RepositoryError(t *testing.T) {
	user := &auth.User{ID: uuid.New()}
	repo := &mockOrderRepository{listErr: errors.New("connection refused")}

	app := newTestApp(repo, user)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "failed to load orders", errResp.Message)
	assert.Equal(t, "test-ray-id", errResp.RayID)
}

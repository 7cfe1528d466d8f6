package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/orders/domain"
	"printstore-api/internal/features/orders/ports"
)

// OrdersService exposes the local order history.
type OrdersService struct {
	repo ports.OrderRepository
}

// NewOrdersService creates a new instance of OrdersService.
func NewOrdersService(repo ports.OrderRepository) *OrdersService {
	return &OrdersService{repo: repo}
}

// List returns the user's orders, newest first.
func (s *OrdersService) List(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	logger.Get().Debug("Listed orders",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(orders)),
	)

	return orders, nil
}

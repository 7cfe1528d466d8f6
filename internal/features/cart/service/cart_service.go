package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/cart/domain"
	"printstore-api/internal/features/cart/ports"
)

// ErrInvalidQuantity is returned when a quantity is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartService manages the user's cart.
type CartService struct {
	repo ports.CartRepository
}

// NewCartService creates a new CartService.
func NewCartService(repo ports.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// AddItem puts a product into the cart. A repeated add accumulates the
// quantity; buyNow overwrites it instead, so "buy now" from a product page
// always checks out exactly what was asked for.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, productID int64, quantity int, selectedSize string, buyNow bool) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item := &domain.CartItem{
		UserID:       userID,
		ProductID:    productID,
		Quantity:     quantity,
		SelectedSize: selectedSize,
	}
	if err := s.repo.Upsert(ctx, item, buyNow); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	logger.Get().Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.Int64("product_id", productID),
		zap.Bool("buy_now", buyNow),
	)

	return item, nil
}

// UpdateQuantity overwrites the quantity of an existing cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.repo.SetQuantity(ctx, userID, productID, selectedSize, quantity)
}

// RemoveItem deletes one cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string) error {
	return s.repo.Remove(ctx, userID, productID, selectedSize)
}

// List returns the user's cart lines, oldest first.
func (s *CartService) List(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Clear(ctx, userID)
}

package cart

import (
	"context"

	"figurinha-studio/internal/domain"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddOne(ctx context.Context, userID, packID string) error
	SetQuantity(ctx context.Context, userID, packID string, quantity int) error
	Remove(ctx context.Context, userID, packID string) error
	Clear(ctx context.Context, userID string) error
}

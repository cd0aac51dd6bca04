package pack

import (
	"context"

	"figurinha-studio/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Pack, error)
	GetByID(ctx context.Context, id string) (*domain.Pack, error)
	GetByName(ctx context.Context, name string) (*domain.Pack, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Pack, error)
	Save(ctx context.Context, p domain.Pack) (*domain.Pack, error)
	Delete(ctx context.Context, id string) error
}

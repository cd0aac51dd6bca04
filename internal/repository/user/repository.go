package user

import (
	"context"

	"figurinha-studio/internal/domain"
)

// Repository persists identities and their profiles.
type Repository interface {
	Create(ctx context.Context, u domain.User, fullName string) (*domain.User, *domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ConfirmEmail(ctx context.Context, id string) error
	SetRole(ctx context.Context, id, role string) error
}

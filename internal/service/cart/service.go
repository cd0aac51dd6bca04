package cart

import (
	"context"
	"strings"

	"figurinha-studio/internal/domain"
)

type Service struct {
	repo     cartRepo
	packRepo packRepo
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddOne(ctx context.Context, userID, packID string) error
	SetQuantity(ctx context.Context, userID, packID string, quantity int) error
	Remove(ctx context.Context, userID, packID string) error
	Clear(ctx context.Context, userID string) error
}

type packRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Pack, error)
}

func New(repo cartRepo, packRepo packRepo) *Service {
	return &Service{repo: repo, packRepo: packRepo}
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, userID)
}

// Add puts one unit of the pack in the cart and returns the refreshed cart.
func (s *Service) Add(ctx context.Context, userID, packID string) (*domain.Cart, error) {
	packID = strings.TrimSpace(packID)
	if packID == "" {
		return nil, domain.Invalid("packId required")
	}
	if s.packRepo != nil {
		if _, err := s.packRepo.GetByID(ctx, packID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.AddOne(ctx, userID, packID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdateQuantity sets an existing line's quantity. Quantities below 1 are rejected without a write.
func (s *Service) UpdateQuantity(ctx context.Context, userID, packID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := s.repo.SetQuantity(ctx, userID, packID, quantity); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, packID string) (*domain.Cart, error) {
	if err := s.repo.Remove(ctx, userID, packID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
}

package order

import (
	"context"

	"figurinha-studio/internal/domain"
)

// Stats are the admin dashboard counters.
type Stats struct {
	Packs            int `json:"packs"`
	Users            int `json:"users"`
	Orders           int `json:"orders"`
	PendingApprovals int `json:"pendingApprovals"`
}

type Repository interface {
	PlaceFromCart(ctx context.Context, userID string, contact domain.Contact) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListWithoutItems(ctx context.Context) ([]domain.Order, error)
	Approve(ctx context.Context, orderID, adminID, paymentLink string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
	RequestWhatsApp(ctx context.Context, orderID, userID, number string) error
	Stats(ctx context.Context) (Stats, error)
}

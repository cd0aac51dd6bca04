// Package storefront holds the client-side session and cart state of a shopper.
// Every cart mutation is confirmed by the backend before local state changes.
package storefront

import (
	"context"
	"errors"
	"sync"

	"figurinha-studio/internal/domain"
)

// ErrNotSignedIn is returned by cart operations when no user is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// Backend is the remote side of the session: identity plus the server cart.
// Cart mutations return the server's cart after the change.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (token string, profile *domain.Profile, err error)
	FetchCart(ctx context.Context, token string) (*domain.Cart, error)
	AddItem(ctx context.Context, token, packID string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, token, packID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, token, packID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, token string) (*domain.Cart, error)
}

// Session is the signed-in user plus their cart.
type Session struct {
	backend Backend

	mu      sync.RWMutex
	token   string
	profile *domain.Profile
	// epoch changes on every sign-in and sign-out so late cart responses can be dropped.
	epoch uint64

	cart *Cart
}

func NewSession(backend Backend) *Session {
	s := &Session{backend: backend}
	s.cart = &Cart{session: s}
	return s
}

// CurrentUser returns the signed-in profile.
func (s *Session) CurrentUser() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.Profile{}, false
	}
	return *s.profile, true
}

func (s *Session) Cart() *Cart {
	return s.cart
}

// SignIn authenticates, then replaces the cart with the user's server cart.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	token, profile, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.profile = profile
	s.epoch++
	s.mu.Unlock()

	s.cart.reset()
	return s.cart.Reload(ctx)
}

// SignOut forgets the user and empties the local cart.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.epoch++
	s.mu.Unlock()
	s.cart.reset()
}

func (s *Session) credentials() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.epoch
}

func (s *Session) current(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch == epoch
}

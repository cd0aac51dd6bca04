package storefront

import (
	"context"
	"sync"

	"figurinha-studio/internal/domain"
	"github.com/shopspring/decimal"
)

// Cart mirrors the signed-in user's server cart.
type Cart struct {
	session *Session

	// op serialises remote mutations and the adoption of their results.
	op sync.Mutex

	mu    sync.RWMutex
	lines []domain.CartLine
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) TotalItems() int {
	return c.snapshot().TotalItems()
}

func (c *Cart) TotalPrice() decimal.Decimal {
	return c.snapshot().TotalPrice()
}

// Reload replaces local lines with the server cart.
func (c *Cart) Reload(ctx context.Context) error {
	return c.apply(ctx, func(ctx context.Context, token string) (*domain.Cart, error) {
		return c.session.backend.FetchCart(ctx, token)
	})
}

// AddToCart adds one unit of the pack. A pack already in the cart has its quantity raised by one
// on the server, so overlapping adds each count.
func (c *Cart) AddToCart(ctx context.Context, pack domain.Pack) error {
	return c.apply(ctx, func(ctx context.Context, token string) (*domain.Cart, error) {
		return c.session.backend.AddItem(ctx, token, pack.ID)
	})
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 are rejected without a remote call.
func (c *Cart) UpdateQuantity(ctx context.Context, packID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	return c.apply(ctx, func(ctx context.Context, token string) (*domain.Cart, error) {
		return c.session.backend.SetQuantity(ctx, token, packID, quantity)
	})
}

func (c *Cart) RemoveFromCart(ctx context.Context, packID string) error {
	return c.apply(ctx, func(ctx context.Context, token string) (*domain.Cart, error) {
		return c.session.backend.RemoveItem(ctx, token, packID)
	})
}

func (c *Cart) ClearCart(ctx context.Context) error {
	return c.apply(ctx, func(ctx context.Context, token string) (*domain.Cart, error) {
		return c.session.backend.ClearCart(ctx, token)
	})
}

// apply runs a remote mutation and adopts the returned cart. Local state is untouched on error
// or when the session changed while the call was in flight.
func (c *Cart) apply(ctx context.Context, call func(ctx context.Context, token string) (*domain.Cart, error)) error {
	c.op.Lock()
	defer c.op.Unlock()

	token, epoch := c.session.credentials()
	if token == "" {
		return ErrNotSignedIn
	}
	cart, err := call(ctx, token)
	if err != nil {
		return err
	}
	if !c.session.current(epoch) {
		return nil
	}
	var lines []domain.CartLine
	if cart != nil {
		lines = cart.Lines
	}
	c.mu.Lock()
	c.lines = append([]domain.CartLine(nil), lines...)
	c.mu.Unlock()
	return nil
}

func (c *Cart) reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

func (c *Cart) snapshot() domain.Cart {
	return domain.Cart{Lines: c.Lines()}
}

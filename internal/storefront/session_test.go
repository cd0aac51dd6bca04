package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"figurinha-studio/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeBackend keeps one server cart per token with the server's upsert semantics.
type fakeBackend struct {
	prices   map[string]decimal.Decimal
	carts    map[string][]domain.CartLine
	calls    int
	failNext error
	// beforeReturn runs after the server state changed and before the response is returned.
	beforeReturn func()
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		prices: map[string]decimal.Decimal{
			"p1": decimal.RequireFromString("9.99"),
			"p2": decimal.RequireFromString("14.99"),
		},
		carts: map[string][]domain.CartLine{},
	}
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (string, *domain.Profile, error) {
	if password != "secret" {
		return "", nil, errors.New("invalid credentials")
	}
	return "token-" + email, &domain.Profile{ID: "id-" + email, Email: email, Role: domain.RoleCustomer}, nil
}

func (f *fakeBackend) respond(token string) (*domain.Cart, error) {
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
	lines := append([]domain.CartLine(nil), f.carts[token]...)
	return &domain.Cart{Lines: lines}, nil
}

func (f *fakeBackend) fail() error {
	f.calls++
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeBackend) FetchCart(_ context.Context, token string) (*domain.Cart, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.respond(token)
}

func (f *fakeBackend) AddItem(_ context.Context, token, packID string) (*domain.Cart, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	for i, l := range f.carts[token] {
		if l.PackID == packID {
			f.carts[token][i].Quantity++
			return f.respond(token)
		}
	}
	f.carts[token] = append(f.carts[token], domain.CartLine{PackID: packID, Quantity: 1, Price: f.prices[packID]})
	return f.respond(token)
}

func (f *fakeBackend) SetQuantity(_ context.Context, token, packID string, quantity int) (*domain.Cart, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	for i, l := range f.carts[token] {
		if l.PackID == packID {
			f.carts[token][i].Quantity = quantity
			return f.respond(token)
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBackend) RemoveItem(_ context.Context, token, packID string) (*domain.Cart, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	var kept []domain.CartLine
	for _, l := range f.carts[token] {
		if l.PackID != packID {
			kept = append(kept, l)
		}
	}
	f.carts[token] = kept
	return f.respond(token)
}

func (f *fakeBackend) ClearCart(_ context.Context, token string) (*domain.Cart, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	delete(f.carts, token)
	return f.respond(token)
}

func signedIn(t *testing.T, backend *fakeBackend) *Session {
	t.Helper()
	s := NewSession(backend)
	if err := s.SignIn(context.Background(), "ana@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return s
}

func TestCartRequiresSignIn(t *testing.T) {
	backend := newFakeBackend()
	s := NewSession(backend)
	ctx := context.Background()
	if err := s.Cart().AddToCart(ctx, domain.Pack{ID: "p1"}); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", err)
	}
	if err := s.Cart().UpdateQuantity(ctx, "p1", 2); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("no remote call expected, got %d", backend.calls)
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("no user expected")
	}
}

func TestSignInLoadsServerCart(t *testing.T) {
	backend := newFakeBackend()
	backend.carts["token-ana@example.com"] = []domain.CartLine{{PackID: "p2", Quantity: 3, Price: decimal.RequireFromString("14.99")}}
	s := signedIn(t, backend)
	u, ok := s.CurrentUser()
	if !ok || u.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if s.Cart().TotalItems() != 3 || s.Cart().TotalPrice().String() != "44.97" {
		t.Fatalf("unexpected totals %d %s", s.Cart().TotalItems(), s.Cart().TotalPrice())
	}
}

func TestSignInFailureKeepsSignedOut(t *testing.T) {
	s := NewSession(newFakeBackend())
	if err := s.SignIn(context.Background(), "ana@example.com", "wrong"); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("no user expected after failed sign in")
	}
}

func TestAddTwiceIncrementsQuantity(t *testing.T) {
	s := signedIn(t, newFakeBackend())
	ctx := context.Background()
	cart := s.Cart()
	if err := cart.AddToCart(ctx, domain.Pack{ID: "p1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddToCart(ctx, domain.Pack{ID: "p1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddToCart(ctx, domain.Pack{ID: "p2"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	lines := cart.Lines()
	if len(lines) != 2 || lines[0].Quantity != 2 || lines[1].Quantity != 1 {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if cart.TotalItems() != 3 || cart.TotalPrice().String() != "34.97" {
		t.Fatalf("unexpected totals %d %s", cart.TotalItems(), cart.TotalPrice())
	}
}

func TestOverlappingAddsEachCount(t *testing.T) {
	backend := newFakeBackend()
	s := signedIn(t, backend)
	ctx := context.Background()
	cart := s.Cart()
	if err := cart.AddToCart(ctx, domain.Pack{ID: "p1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	backend.beforeReturn = func() { time.Sleep(20 * time.Millisecond) }

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- cart.AddToCart(ctx, domain.Pack{ID: "p1"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if got := backend.carts["token-ana@example.com"][0].Quantity; got != 3 {
		t.Fatalf("server quantity: want 3, got %d", got)
	}
	if cart.TotalItems() != 3 {
		t.Fatalf("local total items: want 3, got %d", cart.TotalItems())
	}
}

func TestUpdateQuantityBelowOneIsRejectedLocally(t *testing.T) {
	backend := newFakeBackend()
	s := signedIn(t, backend)
	ctx := context.Background()
	_ = s.Cart().AddToCart(ctx, domain.Pack{ID: "p1"})
	calls := backend.calls
	if err := s.Cart().UpdateQuantity(ctx, "p1", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if backend.calls != calls {
		t.Fatalf("no remote call expected")
	}
	if s.Cart().Lines()[0].Quantity != 1 {
		t.Fatalf("state must not change")
	}
}

func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	backend := newFakeBackend()
	s := signedIn(t, backend)
	ctx := context.Background()
	_ = s.Cart().AddToCart(ctx, domain.Pack{ID: "p1"})

	backend.failNext = errors.New("network down")
	if err := s.Cart().AddToCart(ctx, domain.Pack{ID: "p2"}); err == nil {
		t.Fatalf("expected error")
	}
	backend.failNext = errors.New("network down")
	if err := s.Cart().ClearCart(ctx); err == nil {
		t.Fatalf("expected error")
	}
	lines := s.Cart().Lines()
	if len(lines) != 1 || lines[0].PackID != "p1" {
		t.Fatalf("local state changed on failure: %+v", lines)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := signedIn(t, newFakeBackend())
	ctx := context.Background()
	cart := s.Cart()
	_ = cart.AddToCart(ctx, domain.Pack{ID: "p1"})
	_ = cart.AddToCart(ctx, domain.Pack{ID: "p2"})
	if err := cart.RemoveFromCart(ctx, "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if lines := cart.Lines(); len(lines) != 1 || lines[0].PackID != "p2" {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if err := cart.ClearCart(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cart.TotalItems() != 0 || !cart.TotalPrice().IsZero() {
		t.Fatalf("expected empty cart")
	}
}

func TestSignOutEmptiesCart(t *testing.T) {
	s := signedIn(t, newFakeBackend())
	_ = s.Cart().AddToCart(context.Background(), domain.Pack{ID: "p1"})
	s.SignOut()
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("user must be cleared")
	}
	if len(s.Cart().Lines()) != 0 {
		t.Fatalf("cart must be empty after sign out")
	}
}

func TestResponseAfterSignOutIsDropped(t *testing.T) {
	backend := newFakeBackend()
	s := signedIn(t, backend)
	backend.beforeReturn = s.SignOut
	if err := s.Cart().AddToCart(context.Background(), domain.Pack{ID: "p1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(s.Cart().Lines()) != 0 {
		t.Fatalf("late response must not repopulate a signed-out cart")
	}
}

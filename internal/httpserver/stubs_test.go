package httpserver

import (
	"context"
	"io"
	"log"
	"strings"

	"figurinha-studio/internal/domain"
	orderrepo "figurinha-studio/internal/repository/order"
	categorysvc "figurinha-studio/internal/service/category"
	identitysvc "figurinha-studio/internal/service/identity"
	"figurinha-studio/internal/service/notify"
	ordersvc "figurinha-studio/internal/service/order"
	packsvc "figurinha-studio/internal/service/pack"
	"figurinha-studio/internal/storage"
	"github.com/shopspring/decimal"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

const (
	packA    = "11111111-1111-1111-1111-111111111111"
	orderA   = "22222222-2222-2222-2222-222222222222"
	itemA    = "33333333-3333-3333-3333-333333333333"
	customer = "44444444-4444-4444-4444-444444444444"
	admin    = "55555555-5555-5555-5555-555555555555"
)

type stubPackService struct {
	packs     []domain.Pack
	lastInput packsvc.Input
	err       error
}

func (s *stubPackService) List(_ context.Context, categoryID string) ([]domain.Pack, error) {
	return domain.FilterPacks(s.packs, categoryID), s.err
}

func (s *stubPackService) Get(_ context.Context, id string) (*domain.Pack, error) {
	for _, p := range s.packs {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubPackService) Create(_ context.Context, adminID string, in packsvc.Input) (*domain.Pack, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	link := in.StickerFilesURL
	return &domain.Pack{ID: packA, Name: in.Name, Price: in.Price, StickerFilesURL: &link, CreatedBy: &adminID}, nil
}

func (s *stubPackService) Update(_ context.Context, id string, in packsvc.Input) (*domain.Pack, error) {
	s.lastInput = in
	return &domain.Pack{ID: id, Name: in.Name}, s.err
}

func (s *stubPackService) Delete(context.Context, string) error { return s.err }

type stubCategoryService struct {
	counts []domain.CategoryCount
	err    error
}

func (s *stubCategoryService) List(context.Context) ([]domain.Category, error) { return nil, s.err }

func (s *stubCategoryService) ListWithCounts(context.Context) ([]domain.CategoryCount, error) {
	return s.counts, s.err
}

func (s *stubCategoryService) Create(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: "c1", Name: in.Name, Color: in.Color}, nil
}

func (s *stubCategoryService) Update(_ context.Context, id string, in categorysvc.Input) (*domain.Category, error) {
	return &domain.Category{ID: id, Name: in.Name}, s.err
}

func (s *stubCategoryService) Delete(context.Context, string) error { return s.err }

// stubCartService keeps one in-memory cart per user.
type stubCartService struct {
	carts map[string]*domain.Cart
	price decimal.Decimal
}

func newStubCartService() *stubCartService {
	return &stubCartService{carts: map[string]*domain.Cart{}, price: decimal.RequireFromString("9.99")}
}

func (s *stubCartService) cart(userID string) *domain.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &domain.Cart{UserID: userID}
		s.carts[userID] = c
	}
	return c
}

func (s *stubCartService) Get(_ context.Context, userID string) (*domain.Cart, error) {
	return s.cart(userID), nil
}

func (s *stubCartService) Add(_ context.Context, userID, packID string) (*domain.Cart, error) {
	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].PackID == packID {
			c.Lines[i].Quantity++
			return c, nil
		}
	}
	c.Lines = append(c.Lines, domain.CartLine{PackID: packID, Quantity: 1, Price: s.price})
	return c, nil
}

func (s *stubCartService) UpdateQuantity(_ context.Context, userID, packID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	c := s.cart(userID)
	for i := range c.Lines {
		if c.Lines[i].PackID == packID {
			c.Lines[i].Quantity = quantity
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCartService) Remove(_ context.Context, userID, packID string) (*domain.Cart, error) {
	c := s.cart(userID)
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.PackID != packID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
	return c, nil
}

func (s *stubCartService) Clear(_ context.Context, userID string) (*domain.Cart, error) {
	c := s.cart(userID)
	c.Lines = nil
	return c, nil
}

type stubOrderService struct {
	order       *domain.Order
	err         error
	downloadURL string
	lastLink    string
	lastPhone   string
	views       []ordersvc.View
}

func (s *stubOrderService) Checkout(_ context.Context, userID string, in ordersvc.CheckoutInput) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: orderA, UserID: userID, CustomerName: in.Name, Status: domain.OrderStatusPending}, nil
}

func (s *stubOrderService) Approve(_ context.Context, _, orderID, link string) (*domain.Order, error) {
	s.lastLink = link
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: orderID, Status: domain.OrderStatusPending, AdminApproved: true}, nil
}

func (s *stubOrderService) MarkPaid(_ context.Context, orderID string) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: orderID, Status: domain.OrderStatusPaid, AdminApproved: true}, nil
}

func (s *stubOrderService) RequestDelivery(_ context.Context, _, _, phone, confirmation string) error {
	s.lastPhone = phone
	if _, err := domain.ConfirmPhone(phone, confirmation); err != nil {
		return err
	}
	return s.err
}

func (s *stubOrderService) Download(context.Context, string, string, string) (string, error) {
	return s.downloadURL, s.err
}

func (s *stubOrderService) ListMine(context.Context, string) ([]ordersvc.View, error) {
	return s.views, s.err
}

func (s *stubOrderService) ListAll(context.Context) ([]ordersvc.View, error) { return s.views, s.err }

func (s *stubOrderService) Stats(context.Context) (orderrepo.Stats, error) {
	return orderrepo.Stats{Packs: 3, Users: 2, Orders: 5, PendingApprovals: 1}, s.err
}

func (s *stubOrderService) Reconcile(context.Context) ([]ordersvc.View, error) { return s.views, s.err }

// stubIdentityService maps bearer tokens to profiles.
type stubIdentityService struct {
	profiles     map[string]*domain.Profile
	session      *identitysvc.Session
	err          error
	lastRecovery string
	lastResend   string
}

func newStubIdentity() *stubIdentityService {
	return &stubIdentityService{profiles: map[string]*domain.Profile{
		"customer-token": {ID: customer, Email: "ana@example.com", Role: domain.RoleCustomer},
		"admin-token":    {ID: admin, Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
}

func (s *stubIdentityService) Signup(_ context.Context, in identitysvc.SignupInput) (*domain.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Profile{ID: customer, Email: in.Email, Role: domain.RoleCustomer}, nil
}

func (s *stubIdentityService) Login(context.Context, string, string) (*identitysvc.Session, error) {
	return s.session, s.err
}

func (s *stubIdentityService) ConfirmEmail(context.Context, string) error { return s.err }

func (s *stubIdentityService) RequestRecovery(_ context.Context, email, _ string) error {
	s.lastRecovery = email
	return s.err
}

func (s *stubIdentityService) ResendConfirmation(_ context.Context, email, _ string) error {
	s.lastResend = email
	return s.err
}

func (s *stubIdentityService) ResetPassword(context.Context, string, string) error { return s.err }

func (s *stubIdentityService) Authorize(_ context.Context, bearer, role string) (identitysvc.Access, *domain.Profile, error) {
	p, ok := s.profiles[strings.TrimPrefix(bearer, "Bearer ")]
	if !ok {
		return identitysvc.AccessUnauthenticated, nil, nil
	}
	if role == domain.RoleAdmin && !p.IsAdmin() {
		return identitysvc.AccessUnauthorized, p, nil
	}
	return identitysvc.AccessAuthorized, p, nil
}

type stubMailer struct {
	sent []notify.AuthEmail
	err  error
}

func (s *stubMailer) SendAuthEmail(_ context.Context, e notify.AuthEmail) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, e)
	return nil
}

type stubStore struct {
	root    string
	names   []string
	deleted []string
	err     error
}

func (s *stubStore) Root() string { return s.root }

func (s *stubStore) SaveImage(_ context.Context, filename string, r io.Reader) (storage.Object, error) {
	return s.save(storage.BucketPackImages, filename, r)
}

func (s *stubStore) SaveArchive(_ context.Context, filename string, r io.Reader) (storage.Object, error) {
	return s.save(storage.BucketStickerFiles, filename, r)
}

func (s *stubStore) Delete(_ context.Context, bucket, name string) error {
	if bucket != storage.BucketPackImages && bucket != storage.BucketStickerFiles {
		return storage.ErrUnknownBucket
	}
	s.deleted = append(s.deleted, bucket+"/"+name)
	return nil
}

func (s *stubStore) save(bucket, filename string, r io.Reader) (storage.Object, error) {
	if s.err != nil {
		return storage.Object{}, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	s.names = append(s.names, filename)
	return storage.Object{Bucket: bucket, Name: filename, URL: "/storage/" + bucket + "/" + filename, Size: int64(len(data))}, nil
}

func testDeps() Deps {
	return Deps{
		PackSvc:     &stubPackService{},
		CategorySvc: &stubCategoryService{},
		CartSvc:     newStubCartService(),
		OrderSvc:    &stubOrderService{},
		IdentitySvc: newStubIdentity(),
	}
}

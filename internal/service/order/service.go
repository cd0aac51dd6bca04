package order

import (
	"context"
	"net/url"
	"strings"

	"figurinha-studio/internal/domain"
	orderrepo "figurinha-studio/internal/repository/order"
)

type orderRepo interface {
	PlaceFromCart(ctx context.Context, userID string, contact domain.Contact) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListWithoutItems(ctx context.Context) ([]domain.Order, error)
	Approve(ctx context.Context, orderID, adminID, paymentLink string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
	RequestWhatsApp(ctx context.Context, orderID, userID, number string) error
	Stats(ctx context.Context) (orderrepo.Stats, error)
}

type packRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Pack, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Pack, error)
}

// catalog is the cached pack listing; approval writes the payment link onto a pack.
type catalog interface {
	Invalidate(ctx context.Context)
}

// Service drives the order lifecycle: checkout, approval, payment and fulfillment.
type Service struct {
	repo    orderRepo
	packs   packRepo
	catalog catalog
}

func New(repo orderRepo, packs packRepo, catalog catalog) *Service {
	return &Service{repo: repo, packs: packs, catalog: catalog}
}

// View is an order as shown to a customer or admin, with its derived status label.
type View struct {
	domain.Order
	StatusLabel string     `json:"statusLabel"`
	Items       []ItemView `json:"items"`
}

// ItemView exposes the payment link while awaiting payment and the archive once paid.
type ItemView struct {
	domain.OrderItem
	PaymentLink string `json:"paymentLink,omitempty"`
	ArchiveURL  string `json:"archiveUrl,omitempty"`
}

type CheckoutInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Checkout turns the user's cart into a pending, unapproved order and empties the cart.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*domain.Order, error) {
	contact := domain.Contact{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
	switch {
	case contact.Name == "":
		return nil, domain.Invalid("name required")
	case contact.Email == "":
		return nil, domain.Invalid("email required")
	case !strings.Contains(contact.Email, "@"):
		return nil, domain.Invalid("email invalid")
	case contact.Phone == "":
		return nil, domain.Invalid("phone required")
	}
	return s.repo.PlaceFromCart(ctx, userID, contact)
}

// Approve issues the payment link for an order. Re-approving refreshes the link until the order is paid.
func (s *Service) Approve(ctx context.Context, adminID, orderID, paymentLink string) (*domain.Order, error) {
	link := strings.TrimSpace(paymentLink)
	if link == "" {
		return nil, domain.Invalid("paymentLink required")
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.Invalid("paymentLink must be an http(s) URL")
	}
	o, err := s.repo.Approve(ctx, orderID, adminID, link)
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return o, nil
}

func (s *Service) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.MarkPaid(ctx, orderID)
}

// RequestDelivery records a WhatsApp delivery request for a paid order owned by userID.
func (s *Service) RequestDelivery(ctx context.Context, userID, orderID, phone, confirmation string) error {
	number, err := domain.ConfirmPhone(phone, confirmation)
	if err != nil {
		return err
	}
	return s.repo.RequestWhatsApp(ctx, orderID, userID, number)
}

// Download resolves the archive URL of a paid order item owned by userID.
func (s *Service) Download(ctx context.Context, userID, orderID, itemID string) (string, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.UserID != userID {
		return "", domain.ErrNotFound
	}
	if !o.IsPaid() {
		return "", domain.ErrInvalidTransition
	}
	item, ok := o.Item(itemID)
	if !ok || item.PackID == nil {
		return "", domain.ErrNotFound
	}
	pack, err := s.packs.GetByID(ctx, *item.PackID)
	if err != nil {
		return "", err
	}
	if !pack.HasArchive() {
		return "", domain.ErrNotFound
	}
	return *pack.StickerFilesURL, nil
}

// ListMine returns the user's orders newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]View, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders, false)
}

// ListAll returns every order for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]View, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders, true)
}

func (s *Service) Stats(ctx context.Context) (orderrepo.Stats, error) {
	return s.repo.Stats(ctx)
}

// Reconcile lists orders that were left without items.
func (s *Service) Reconcile(ctx context.Context) ([]View, error) {
	orders, err := s.repo.ListWithoutItems(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders, true)
}

func (s *Service) views(ctx context.Context, orders []domain.Order, admin bool) ([]View, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, o := range orders {
		for _, id := range o.PackIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	packs := map[string]domain.Pack{}
	if len(ids) > 0 {
		var err error
		if packs, err = s.packs.GetMany(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]View, 0, len(orders))
	for _, o := range orders {
		v := View{Order: o, StatusLabel: o.StatusLabel(), Items: make([]ItemView, 0, len(o.Items))}
		for _, it := range o.Items {
			iv := ItemView{OrderItem: it}
			if it.PackID != nil {
				if p, ok := packs[*it.PackID]; ok {
					if p.PaymentLink != nil && (admin || o.AwaitingPayment()) {
						iv.PaymentLink = *p.PaymentLink
					}
					if p.HasArchive() && (admin || o.IsPaid()) {
						iv.ArchiveURL = *p.StickerFilesURL
					}
				}
			}
			v.Items = append(v.Items, iv)
		}
		out = append(out, v)
	}
	return out, nil
}

package order

import (
	"context"
	"errors"
	"testing"

	"figurinha-studio/internal/domain"
	cartrepo "figurinha-studio/internal/repository/cart"
	packrepo "figurinha-studio/internal/repository/pack"
	userrepo "figurinha-studio/internal/repository/user"
	"figurinha-studio/internal/testdb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type fixture struct {
	pool   *pgxpool.Pool
	orders Repository
	carts  cartrepo.Repository
	packs  packrepo.Repository
	userID string
}

func setup(t *testing.T) fixture {
	t.Helper()
	pool := testdb.Pool(t)
	testdb.Reset(t, pool)
	users := userrepo.NewPostgres(pool, nil)
	u, _, err := users.Create(context.Background(), domain.User{Email: "ana@example.com", PasswordHash: "x"}, "Ana")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return fixture{
		pool:   pool,
		orders: NewPostgres(pool, nil),
		carts:  cartrepo.NewPostgres(pool),
		packs:  packrepo.NewPostgres(pool, nil),
		userID: u.ID,
	}
}

func (f fixture) pack(t *testing.T, name, price string) *domain.Pack {
	t.Helper()
	archive := "https://files.example.com/" + name + ".zip"
	p, err := f.packs.Save(context.Background(), domain.Pack{
		Name:            name,
		Price:           decimal.RequireFromString(price),
		Quantity:        10,
		StickerFilesURL: &archive,
	})
	if err != nil {
		t.Fatalf("save pack: %v", err)
	}
	return p
}

var contact = domain.Contact{Name: "Ana", Email: "ana@example.com", Phone: "11999998888"}

func TestPlaceFromCartSnapshotsAndEmptiesCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.pack(t, "memes", "9.99")
	b := f.pack(t, "gatos", "14.99")
	if err := f.carts.AddOne(ctx, f.userID, a.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.carts.AddOne(ctx, f.userID, b.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	order, err := f.orders.PlaceFromCart(ctx, f.userID, contact)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("24.98")) {
		t.Fatalf("expected total 24.98, got %s", order.TotalAmount)
	}
	if len(order.Items) != 2 || order.Items[0].PackName != "memes" || order.Items[1].Quantity != 1 {
		t.Fatalf("unexpected items %+v", order.Items)
	}
	if order.AdminApproved || order.Status != domain.OrderStatusPending {
		t.Fatalf("new order must be pending and unapproved: %+v", order)
	}

	cart, err := f.carts.Get(ctx, f.userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d lines", len(cart.Lines))
	}

	if _, err := f.orders.PlaceFromCart(ctx, f.userID, contact); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("second checkout: expected ErrEmptyCart, got %v", err)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.pack(t, "memes", "9.99")
	f.carts.AddOne(ctx, f.userID, a.ID)
	order, err := f.orders.PlaceFromCart(ctx, f.userID, contact)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if _, err := f.orders.MarkPaid(ctx, order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("paid before approval: expected ErrInvalidTransition, got %v", err)
	}
	if err := f.orders.RequestWhatsApp(ctx, order.ID, f.userID, "11999998888"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("whatsapp before paid: expected ErrInvalidTransition, got %v", err)
	}

	approved, err := f.orders.Approve(ctx, order.ID, f.userID, "https://pay.example.com/memes")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.StatusLabel() != domain.LabelAwaitingPayment || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved order %+v", approved)
	}
	live, err := f.packs.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get pack: %v", err)
	}
	if live.PaymentLink == nil || *live.PaymentLink != "https://pay.example.com/memes" {
		t.Fatalf("payment link not stored on pack: %v", live.PaymentLink)
	}

	paid, err := f.orders.MarkPaid(ctx, order.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.StatusLabel() != domain.LabelPaid {
		t.Fatalf("expected paid label, got %s", paid.StatusLabel())
	}
	if _, err := f.orders.Approve(ctx, order.ID, f.userID, "https://pay.example.com/other"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("approve after paid: expected ErrInvalidTransition, got %v", err)
	}

	if err := f.orders.RequestWhatsApp(ctx, order.ID, "00000000-0000-0000-0000-000000000000", "11999998888"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign user: expected ErrNotFound, got %v", err)
	}
	if err := f.orders.RequestWhatsApp(ctx, order.ID, f.userID, "11999998888"); err != nil {
		t.Fatalf("request whatsapp: %v", err)
	}
	got, err := f.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.WhatsAppRequested || got.WhatsAppNumber == nil || *got.WhatsAppNumber != "11999998888" {
		t.Fatalf("whatsapp request not recorded: %+v", got)
	}

	stats, err := f.orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Orders != 1 || stats.Packs != 1 || stats.Users != 1 || stats.PendingApprovals != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPackDeleteKeepsOrderSnapshot(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.pack(t, "memes", "9.99")
	f.carts.AddOne(ctx, f.userID, a.ID)
	order, err := f.orders.PlaceFromCart(ctx, f.userID, contact)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.packs.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete pack: %v", err)
	}

	got, err := f.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected item to survive pack delete, got %d", len(got.Items))
	}
	item := got.Items[0]
	if item.PackID != nil || item.PackName != "memes" || !item.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("snapshot not preserved: %+v", item)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("total changed: %s", got.TotalAmount)
	}
	if _, err := f.orders.Approve(ctx, order.ID, f.userID, "https://pay.example.com/x"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("approve without live pack: expected ErrInvalidTransition, got %v", err)
	}
}

func TestApproveFallsThroughToFirstLivePack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.pack(t, "memes", "9.99")
	b := f.pack(t, "gatos", "14.99")
	for _, id := range []string{a.ID, b.ID} {
		if err := f.carts.AddOne(ctx, f.userID, id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	order, err := f.orders.PlaceFromCart(ctx, f.userID, contact)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	firstPack, survivor := *order.Items[0].PackID, *order.Items[1].PackID
	if err := f.packs.Delete(ctx, firstPack); err != nil {
		t.Fatalf("delete pack: %v", err)
	}

	approved, err := f.orders.Approve(ctx, order.ID, f.userID, "https://pay.example.com/second")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.AdminApproved {
		t.Fatalf("expected approved order")
	}
	p, err := f.packs.GetByID(ctx, survivor)
	if err != nil {
		t.Fatalf("get pack: %v", err)
	}
	if p.PaymentLink == nil || *p.PaymentLink != "https://pay.example.com/second" {
		t.Fatalf("expected link on the surviving pack, got %v", p.PaymentLink)
	}
}

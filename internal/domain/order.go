package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

const (
	LabelAwaitingApproval = "Awaiting Approval"
	LabelAwaitingPayment  = "Approved – Awaiting Payment"
	LabelPaid             = "Paid"
)

// MinPhoneDigits is the shortest accepted WhatsApp number after sanitizing.
const MinPhoneDigits = 10

// Contact is captured at checkout and may diverge from the profile.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CustomerName      string          `json:"customerName"`
	CustomerEmail     string          `json:"customerEmail"`
	CustomerPhone     string          `json:"customerPhone"`
	Status            string          `json:"status"`
	AdminApproved     bool            `json:"adminApproved"`
	ApprovedAt        *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy        *string         `json:"approvedBy,omitempty"`
	WhatsAppRequested bool            `json:"whatsappRequested"`
	WhatsAppNumber    *string         `json:"whatsappNumber,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	Items             []OrderItem     `json:"items"`
}

// OrderItem snapshots the pack at purchase time. PackID is nil once the pack is deleted.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	PackID    *string         `json:"packId,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	PackName  string          `json:"packName"`
	PackImage string          `json:"packImageUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderDraft is the immutable snapshot written at checkout.
type OrderDraft struct {
	UserID      string
	Contact     Contact
	TotalAmount decimal.Decimal
	Items       []OrderItem
}

// DraftFromCart snapshots cart lines into order items and computes the total once.
func DraftFromCart(userID string, contact Contact, lines []CartLine) (OrderDraft, error) {
	if len(lines) == 0 {
		return OrderDraft{}, ErrEmptyCart
	}
	cart := Cart{UserID: userID, Lines: lines}
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		packID := l.PackID
		items = append(items, OrderItem{
			PackID:    &packID,
			Quantity:  l.Quantity,
			Price:     RoundMoney(l.Price),
			PackName:  l.Name,
			PackImage: l.ImageURL,
		})
	}
	return OrderDraft{
		UserID:      userID,
		Contact:     contact,
		TotalAmount: cart.TotalPrice(),
		Items:       items,
	}, nil
}

// StatusLabel derives the display label from the two independent order flags.
func StatusLabel(adminApproved bool, status string) string {
	switch {
	case status == OrderStatusPaid:
		return LabelPaid
	case status == OrderStatusPending && !adminApproved:
		return LabelAwaitingApproval
	case status == OrderStatusPending && adminApproved:
		return LabelAwaitingPayment
	default:
		return status
	}
}

func (o Order) StatusLabel() string {
	return StatusLabel(o.AdminApproved, o.Status)
}

func (o Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// AwaitingPayment reports the approved-but-unpaid state in which payment links are shown.
func (o Order) AwaitingPayment() bool {
	return o.AdminApproved && o.Status == OrderStatusPending
}

// PaymentPackID returns the pack that carries the order's payment link: the pack of the first
// item, in insertion order, whose pack still exists.
func (o Order) PaymentPackID() (string, bool) {
	for _, it := range o.Items {
		if it.PackID != nil {
			return *it.PackID, true
		}
	}
	return "", false
}

// Item returns the order item with the given id.
func (o Order) Item(itemID string) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return OrderItem{}, false
}

// PackIDs returns the distinct live pack ids referenced by the order's items.
func (o Order) PackIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	var ids []string
	for _, it := range o.Items {
		if it.PackID == nil {
			continue
		}
		if _, ok := seen[*it.PackID]; ok {
			continue
		}
		seen[*it.PackID] = struct{}{}
		ids = append(ids, *it.PackID)
	}
	return ids
}

// SanitizePhone keeps digits only.
func SanitizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConfirmPhone sanitizes phone and its confirmation and returns the digits when they match.
func ConfirmPhone(phone, confirmation string) (string, error) {
	p := SanitizePhone(phone)
	c := SanitizePhone(confirmation)
	if p == "" || p != c || len(p) < MinPhoneDigits {
		return "", ErrInvalidPhone
	}
	return p, nil
}

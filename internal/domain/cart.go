package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"items"`
}

// CartLine is a (user, pack) pair with the live pack fields joined in.
type CartLine struct {
	ID        string          `json:"id"`
	PackID    string          `json:"packId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Subtotal is price times quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalItems sums line quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums price×quantity over all lines, rounded to cents.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return RoundMoney(total)
}

// Line returns the line for packID, if any.
func (c Cart) Line(packID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.PackID == packID {
			return l, true
		}
	}
	return CartLine{}, false
}

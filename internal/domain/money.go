package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds an amount to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseMoney parses a numeric string (as returned by numeric::text) into a rounded amount.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return RoundMoney(d), nil
}

// MoneyString formats an amount for numeric columns.
func MoneyString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a ledger amount in minor currency units (cents).
type Money int64

// PriceRange is an inclusive band of prices.
type PriceRange struct {
	Low  Money `json:"low"`
	High Money `json:"high"`
}

// Contains reports whether m lies within the range (inclusive).
func (r PriceRange) Contains(m Money) bool {
	return m >= r.Low && m <= r.High
}

// Decimal converts the amount to major units (dollars).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Display renders the amount for humans: cents below a dollar, dollars otherwise.
func (m Money) Display() string {
	switch {
	case m < 0:
		return "-" + (-m).Display()
	case m < 100:
		return fmt.Sprintf("¢%d", int64(m))
	default:
		return "$" + m.Decimal().StringFixed(2)
	}
}

// ParseMoney parses a major-unit string ("12.50") into cents.
// Fractions below one cent are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("parse money %q: sub-cent precision", s)
	}
	return Money(cents.IntPart()), nil
}

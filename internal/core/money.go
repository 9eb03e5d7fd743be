// Money handling. Amounts are integer cents everywhere inside the core;
// decimal strings exist only at the API edge.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. Reports and balances are computed
// on cents to avoid floating-point drift.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to positive cents. It accepts both
// dot and comma separators ("12.34", "12,34") and rounds half-up past the
// second decimal place. Zero and negative values are rejected; callers pick
// the debit/credit side explicitly.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	v := cents.IntPart()
	if !cents.Equal(decimal.NewFromInt(v)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: v}, nil
}

// Validate rejects non-positive amounts.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Decimal returns the amount as a two-place decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimal places, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

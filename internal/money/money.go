// Package money implements fixed-point currency arithmetic in integer
// cents. Nothing in this package touches a floating-point value during
// arithmetic; float64 only appears at the JSON boundary.
package money

import (
	"fmt"
	"math"
	"strconv"
)

// Cents is a signed integer amount of money, one unit per cent.
type Cents int64

// EqualTolerance is the tolerance used when comparing summed shares
// against a target amount (§4.A).
const EqualTolerance Cents = 1

// ToCents rounds a decimal dollar amount to the nearest cent, half-up,
// independent of the platform's float rounding mode.
func ToCents(dollars float64) Cents {
	if dollars >= 0 {
		return Cents(math.Floor(dollars*100 + 0.5))
	}
	return -Cents(math.Floor(-dollars*100 + 0.5))
}

// FromCents returns the decimal dollar form of c.
func FromCents(c Cents) float64 {
	return float64(c) / 100
}

// String renders c as a two-decimal amount with a leading sign for
// negative values, e.g. "12.00" or "-3.40".
func (c Cents) String() string {
	neg := c < 0
	if neg {
		c = -c
	}
	whole := c / 100
	frac := c % 100
	s := fmt.Sprintf("%d.%02d", whole, frac)
	if neg {
		return "-" + s
	}
	return s
}

// IsSettled reports whether c is within display-unit tolerance (±0.01)
// of zero.
func (c Cents) IsSettled() bool {
	return c >= -1 && c <= 1
}

// WithinTolerance reports whether c is within ±1 cent of target.
func (c Cents) WithinTolerance(target Cents) bool {
	d := c - target
	if d < 0 {
		d = -d
	}
	return d <= EqualTolerance
}

// ParseDollars parses a decimal string into cents, rejecting anything
// that isn't a plain non-negative or negative decimal number.
func ParseDollars(s string) (Cents, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToCents(f), nil
}

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

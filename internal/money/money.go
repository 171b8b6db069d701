// Package money holds amounts as signed integer cents. Decimal input is rounded to
// cents half away from zero on entry; everything after that is exact integer math.
package money

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor units.
type Cents int64

// Epsilon is the float tolerance below which a magnitude counts as zero. Any
// non-zero Cents value is above it.
const Epsilon = 0.0001

const scale = 2

// FromFloat rounds f to cents. NaN and infinities coerce to zero.
func FromFloat(f float64) Cents {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(scale).Shift(scale).IntPart())
}

// Parse accepts plain decimal notation ("12", "12.5", "-3.005"). Empty input is zero.
func Parse(s string) (Cents, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Round2 rounds a float to two decimals through the same path as FromFloat.
func Round2(f float64) float64 {
	return FromFloat(f).Float64()
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -scale)
}

func (c Cents) Float64() float64 {
	return c.Decimal().InexactFloat64()
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(scale)
}

func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

func (c Cents) Mul(n int) Cents {
	return c * Cents(n)
}

// DivRound divides by n and rounds half away from zero. n <= 0 yields zero.
func (c Cents) DivRound(n int) Cents {
	if n <= 0 {
		return 0
	}
	if c < 0 {
		return -(-c).DivRound(n)
	}
	d := Cents(n)
	return (2*c + d) / (2 * d)
}

func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}

func Sum(values ...Cents) Cents {
	var total Cents
	for _, v := range values {
		total += v
	}
	return total
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON takes a JSON number or a numeric string. null and "" decode to zero.
func (c *Cents) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		if len(b) < 2 || b[len(b)-1] != '"' {
			return fmt.Errorf("invalid amount %s", b)
		}
		b = bytes.TrimSpace(b[1 : len(b)-1])
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

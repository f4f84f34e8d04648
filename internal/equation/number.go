package equation

import (
	"math/big"
	"strings"
)

// Precision is the number of fractional digits kept when a value has no
// exact short decimal form.
const Precision = 6

var precisionScale = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(Precision), nil))

// Number is an exact rational value.
type Number struct {
	r *big.Rat
}

// NewNumber copies r into a Number.
func NewNumber(r *big.Rat) Number {
	return Number{r: new(big.Rat).Set(r)}
}

// Rat returns a copy of the exact value.
func (n Number) Rat() *big.Rat {
	if n.r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(n.r)
}

// Exact reports whether String shows the value without rounding.
func (n Number) Exact() bool {
	return new(big.Rat).Mul(n.Rat(), precisionScale).IsInt()
}

// String returns the canonical display: an integer when the value is whole,
// otherwise a decimal with at most Precision fractional digits rounded half
// away from zero, trailing zeros trimmed.
func (n Number) String() string {
	return formatRat(n.Rat())
}

// Fraction returns the reduced fraction, e.g. "1/3" or "-7".
func (n Number) Fraction() string {
	r := n.Rat()
	if r.IsInt() {
		return r.Num().String()
	}
	return r.String()
}

// Float64 returns the nearest float64 value.
func (n Number) Float64() float64 {
	f, _ := n.Rat().Float64()
	return f
}

// MarshalText renders the canonical display.
func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(Precision)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

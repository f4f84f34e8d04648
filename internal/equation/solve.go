package equation

import (
	"fmt"
	"math/big"
	"strings"
)

// Outcome is the kind of solution an equation has.
type Outcome int

const (
	Unique Outcome = iota
	NoSolution
	Infinite
)

func (o Outcome) String() string {
	switch o {
	case Unique:
		return "unique"
	case NoSolution:
		return "no_solution"
	case Infinite:
		return "infinite"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText renders the outcome name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Solution is the result of solving an equation. Steps are always ordered
// move, combine, then resolve.
type Solution struct {
	Equation string   `json:"equation"`
	Variable string   `json:"variable"`
	Outcome  Outcome  `json:"outcome"`
	Value    *Number  `json:"value,omitempty"`
	Steps    []string `json:"steps"`
}

// Summary is a one-line restatement of the outcome.
func (s *Solution) Summary() string {
	switch s.Outcome {
	case NoSolution:
		return "The equation has no solution."
	case Infinite:
		return "The equation has infinitely many solutions."
	}
	if !s.Value.Exact() {
		return fmt.Sprintf("The solution is %s ≈ %s (exactly %s).", s.Variable, s.Value, s.Value.Fraction())
	}
	return fmt.Sprintf("The solution is %s = %s.", s.Variable, s.Value)
}

// SolveText extracts an equation from free text and solves it.
func SolveText(s string) (*Solution, error) {
	eq, ok := Extract(s)
	if !ok {
		return nil, &ParseError{Input: s, Message: "no equation found"}
	}
	parsed, err := Parse(eq)
	if err != nil {
		return nil, err
	}
	return Solve(parsed), nil
}

// Solve moves variable terms left and constants right, combines them into
// A*v = B and resolves the result.
func Solve(eq *Equation) *Solution {
	v := eq.Variable
	l, r := eq.Left, eq.Right
	sol := &Solution{Equation: eq.Input, Variable: v}

	var lhs, rhs []term
	if l.A.Sign() != 0 {
		lhs = append(lhs, term{coef: l.A, variable: true})
	}
	if r.A.Sign() != 0 {
		lhs = append(lhs, term{coef: new(big.Rat).Neg(r.A), variable: true})
	}
	if r.B.Sign() != 0 {
		rhs = append(rhs, term{coef: r.B})
	}
	if l.B.Sign() != 0 {
		rhs = append(rhs, term{coef: new(big.Rat).Neg(l.B)})
	}
	moved := joinTerms(lhs, v) + " = " + joinTerms(rhs, v)
	if r.A.Sign() == 0 && l.B.Sign() == 0 {
		sol.add("Variable terms are already on the left and constants on the right: %s", moved)
	} else {
		sol.add("Move the %s terms to the left side and the constants to the right side: %s", v, moved)
	}

	a := new(big.Rat).Sub(l.A, r.A)
	b := new(big.Rat).Sub(r.B, l.B)
	sol.add("Combine like terms: %s = %s", coefTerm(a, v), display(b))

	switch {
	case a.Sign() == 0 && b.Sign() == 0:
		sol.Outcome = Infinite
		sol.add("0 = 0 holds for every value of %s, so the equation has infinitely many solutions.", v)
	case a.Sign() == 0:
		sol.Outcome = NoSolution
		sol.add("0 = %s is a contradiction, so no value of %s satisfies the equation.", display(b), v)
	default:
		value := NewNumber(new(big.Rat).Quo(b, a))
		sol.Outcome = Unique
		sol.Value = &value
		if a.Cmp(big.NewRat(1, 1)) != 0 {
			sol.add("Divide both sides by %s: %s = %s / %s", display(a), v, operand(b), operand(a))
		}
		if value.Exact() {
			sol.add("Solution: %s = %s", v, value)
		} else {
			sol.add("Solution: %s ≈ %s (exact value %s, rounded to %d decimal places)",
				v, value, value.Fraction(), Precision)
		}
	}
	return sol
}

func (s *Solution) add(format string, args ...any) {
	s.Steps = append(s.Steps, fmt.Sprintf(format, args...))
}

type term struct {
	coef     *big.Rat
	variable bool
}

// joinTerms renders signed terms, e.g. "2x - 3x" or "9 - 3". No terms is "0".
func joinTerms(terms []term, v string) string {
	if len(terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range terms {
		c := t.coef
		if i > 0 {
			if c.Sign() < 0 {
				sb.WriteString(" - ")
			} else {
				sb.WriteString(" + ")
			}
			c = new(big.Rat).Abs(c)
		}
		if t.variable {
			sb.WriteString(coefTerm(c, v))
		} else {
			sb.WriteString(display(c))
		}
	}
	return sb.String()
}

// coefTerm renders c*v: "x", "-x", "2x", "0x" or "(1/3)x".
func coefTerm(c *big.Rat, v string) string {
	switch {
	case c.Cmp(big.NewRat(1, 1)) == 0:
		return v
	case c.Cmp(big.NewRat(-1, 1)) == 0:
		return "-" + v
	}
	n := NewNumber(c)
	if !n.Exact() {
		return "(" + n.Fraction() + ")" + v
	}
	return n.String() + v
}

// display renders an exact decimal when one exists, the fraction otherwise.
func display(r *big.Rat) string {
	n := NewNumber(r)
	if n.Exact() {
		return n.String()
	}
	return n.Fraction()
}

// operand is display with fractions parenthesized, e.g. "(1/3)".
func operand(r *big.Rat) string {
	n := NewNumber(r)
	if n.Exact() {
		return n.String()
	}
	return "(" + n.Fraction() + ")"
}

// Package equation parses and solves single-variable linear equations with
// exact rational arithmetic, recording each solving step as readable text.
package equation

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// maxExponent bounds constant powers such as 2^10.
const maxExponent = 64

// ParseError reports equation text outside the supported linear grammar.
type ParseError struct {
	Input   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse equation %q at position %d: %s", e.Input, e.Pos, e.Message)
}

// Linear is the normalized form A*var + B.
type Linear struct {
	A *big.Rat
	B *big.Rat
}

func constant(r *big.Rat) Linear {
	return Linear{A: new(big.Rat), B: r}
}

func variable() Linear {
	return Linear{A: big.NewRat(1, 1), B: new(big.Rat)}
}

func (l Linear) add(o Linear) Linear {
	return Linear{A: new(big.Rat).Add(l.A, o.A), B: new(big.Rat).Add(l.B, o.B)}
}

func (l Linear) sub(o Linear) Linear {
	return Linear{A: new(big.Rat).Sub(l.A, o.A), B: new(big.Rat).Sub(l.B, o.B)}
}

func (l Linear) scale(k *big.Rat) Linear {
	return Linear{A: new(big.Rat).Mul(l.A, k), B: new(big.Rat).Mul(l.B, k)}
}

func (l Linear) isConstant() bool { return l.A.Sign() == 0 }

// String renders the form with v as the variable name, e.g. "2x - 3".
func (l Linear) String(v string) string {
	var terms []term
	if l.A.Sign() != 0 {
		terms = append(terms, term{coef: l.A, variable: true})
	}
	if l.B.Sign() != 0 {
		terms = append(terms, term{coef: l.B})
	}
	return joinTerms(terms, v)
}

// Equation is a parsed equation with both sides in linear form.
type Equation struct {
	Input    string
	Variable string
	Left     Linear
	Right    Linear
}

// String renders the normalized equation.
func (e *Equation) String() string {
	return e.Left.String(e.Variable) + " = " + e.Right.String(e.Variable)
}

// Parse reads an equation of the form "<expr> = <expr>" over one lowercase
// variable. Supported: + - * / ^, unary minus, parentheses, decimals and
// implicit multiplication such as 2x or 3(x+1). Products of two variable
// terms, division by the variable and division by zero are rejected.
func Parse(s string) (*Equation, error) {
	p := &parser{input: []rune(s), src: s}

	left, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek() != '=' {
		return nil, p.unexpected()
	}
	p.next()
	right, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek() != 0 {
		if p.peek() == '=' {
			return nil, p.errorf("more than one '='")
		}
		return nil, p.unexpected()
	}
	if p.variable == 0 {
		return nil, &ParseError{Input: s, Pos: 0, Message: "no variable to solve for"}
	}

	return &Equation{
		Input:    strings.TrimSpace(s),
		Variable: string(p.variable),
		Left:     left,
		Right:    right,
	}, nil
}

type parser struct {
	src      string
	input    []rune
	pos      int
	variable rune
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

// peek returns the next non-space rune, or 0 at end of input. Operator
// look-alikes are folded to their ASCII form.
func (p *parser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	switch r := p.input[p.pos]; r {
	case '×', '·':
		return '*'
	case '÷':
		return '/'
	case '−':
		return '-'
	default:
		return r
	}
}

func (p *parser) next() {
	p.skipSpace()
	p.pos++
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Input: p.src, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected() *ParseError {
	if r := p.peek(); r != 0 {
		return p.errorf("unexpected %q", r)
	}
	return p.errorf("unexpected end of input")
}

func (p *parser) expr() (Linear, error) {
	left, err := p.term()
	if err != nil {
		return Linear{}, err
	}
	for {
		switch p.peek() {
		case '+':
			p.next()
			right, err := p.term()
			if err != nil {
				return Linear{}, err
			}
			left = left.add(right)
		case '-':
			p.next()
			right, err := p.term()
			if err != nil {
				return Linear{}, err
			}
			left = left.sub(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) term() (Linear, error) {
	left, err := p.unary()
	if err != nil {
		return Linear{}, err
	}
	for {
		c := p.peek()
		switch {
		case c == '*':
			p.next()
			right, err := p.unary()
			if err != nil {
				return Linear{}, err
			}
			if left, err = p.mul(left, right); err != nil {
				return Linear{}, err
			}
		case c == '/':
			p.next()
			at := p.pos
			right, err := p.unary()
			if err != nil {
				return Linear{}, err
			}
			if left, err = p.div(left, right, at); err != nil {
				return Linear{}, err
			}
		case startsPrimary(c):
			right, err := p.power()
			if err != nil {
				return Linear{}, err
			}
			if left, err = p.mul(left, right); err != nil {
				return Linear{}, err
			}
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Linear, error) {
	switch p.peek() {
	case '+':
		p.next()
		return p.unary()
	case '-':
		p.next()
		v, err := p.unary()
		if err != nil {
			return Linear{}, err
		}
		return v.scale(big.NewRat(-1, 1)), nil
	}
	return p.power()
}

func (p *parser) power() (Linear, error) {
	base, err := p.primary()
	if err != nil {
		return Linear{}, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.next()
	at := p.pos
	exp, err := p.unary()
	if err != nil {
		return Linear{}, err
	}
	if !exp.isConstant() || !exp.B.IsInt() {
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: "exponent must be a constant integer"}
	}
	if !exp.B.Num().IsInt64() || abs64(exp.B.Num().Int64()) > maxExponent {
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: "exponent too large"}
	}
	n := exp.B.Num().Int64()

	if !base.isConstant() {
		switch n {
		case 0:
			return constant(big.NewRat(1, 1)), nil
		case 1:
			return base, nil
		}
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: "non-linear power of the variable"}
	}
	if base.B.Sign() == 0 && n < 0 {
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: "division by zero"}
	}
	return constant(powRat(base.B, n)), nil
}

func (p *parser) primary() (Linear, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.next()
		v, err := p.expr()
		if err != nil {
			return Linear{}, err
		}
		if p.peek() != ')' {
			return Linear{}, p.errorf("missing ')'")
		}
		p.next()
		return v, nil
	case c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isVariableRune(c):
		if p.variable != 0 && p.variable != c {
			return Linear{}, p.errorf("more than one variable (%c and %c)", p.variable, c)
		}
		p.variable = c
		p.next()
		return variable(), nil
	case unicode.IsLetter(c):
		return Linear{}, p.errorf("unsupported symbol %q", c)
	}
	return Linear{}, p.unexpected()
}

func (p *parser) number() (Linear, error) {
	start := p.pos
	digits := func() int {
		n := 0
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
			n++
		}
		return n
	}
	whole := digits()
	for whole > 0 && thousandsSeparator(p.input, p.pos) {
		p.pos++
		digits()
	}
	frac := 0
	if p.pos < len(p.input) && p.input[p.pos] == '.' {
		p.pos++
		frac = digits()
		if frac == 0 {
			return Linear{}, p.errorf("malformed number")
		}
	}
	if whole == 0 && frac == 0 {
		return Linear{}, p.errorf("malformed number")
	}
	r, ok := new(big.Rat).SetString(strings.ReplaceAll(string(p.input[start:p.pos]), ",", ""))
	if !ok {
		return Linear{}, &ParseError{Input: p.src, Pos: start, Message: "malformed number"}
	}
	return constant(r), nil
}

func (p *parser) mul(a, b Linear) (Linear, error) {
	switch {
	case a.isConstant():
		return b.scale(a.B), nil
	case b.isConstant():
		return a.scale(b.B), nil
	}
	return Linear{}, p.errorf("non-linear product of %c terms", p.variable)
}

func (p *parser) div(a, b Linear, at int) (Linear, error) {
	if !b.isConstant() {
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: fmt.Sprintf("division by %c", p.variable)}
	}
	if b.B.Sign() == 0 {
		return Linear{}, &ParseError{Input: p.src, Pos: at, Message: "division by zero"}
	}
	return a.scale(new(big.Rat).Inv(b.B)), nil
}

func startsPrimary(c rune) bool {
	return c == '(' || c == '.' || (c >= '0' && c <= '9') || unicode.IsLetter(c)
}

func powRat(base *big.Rat, n int64) *big.Rat {
	out := big.NewRat(1, 1)
	b := new(big.Rat).Set(base)
	if n < 0 {
		b.Inv(b)
		n = -n
	}
	for ; n > 0; n-- {
		out.Mul(out, b)
	}
	return out
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

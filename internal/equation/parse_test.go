package equation

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"x*x = 4", "non-linear product"},
		{"2/x = 1", "division by x"},
		{"x/0 = 1", "division by zero"},
		{"x + y = 3", "more than one variable"},
		{"2 + 2 = 4", "no variable"},
		{"x + = 3", "unexpected"},
		{"(x + 1 = 2", "missing ')'"},
		{"x^2 = 4", "non-linear power"},
		{"x = 1 = 1", "more than one '='"},
		{"X = 3", "unsupported symbol"},
		{"x + 3", "unexpected end of input"},
		{"2^x = 8", "constant integer"},
		{"x^0.5 = 2", "constant integer"},
		{"3. x = 1", "malformed number"},
		{"x = 1,00", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !strings.Contains(pe.Message, tt.message) {
				t.Fatalf("message = %q, want it to contain %q", pe.Message, tt.message)
			}
			if pe.Input != tt.input {
				t.Fatalf("input = %q, want %q", pe.Input, tt.input)
			}
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("2/x = 1")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Pos != 2 {
		t.Fatalf("pos = %d, want 2", pe.Pos)
	}
}

func TestParse_Normalizes(t *testing.T) {
	eq, err := Parse("2x + 3 - x = 4 + 2x - 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if eq.Variable != "x" {
		t.Fatalf("variable = %q", eq.Variable)
	}
	if got := eq.String(); got != "x + 3 = 2x + 3" {
		t.Fatalf("normalized = %q", got)
	}
}

func TestParse_OtherVariable(t *testing.T) {
	eq, err := Parse("3n - 4 = 11")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if eq.Variable != "n" {
		t.Fatalf("variable = %q, want n", eq.Variable)
	}
	if v := Solve(eq).Value.String(); v != "5" {
		t.Fatalf("value = %s, want 5", v)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Solve for x: x + 9 = 34", "x + 9 = 34", true},
		{"If 2x + 3 = 11, what is x?", "2x + 3 = 11", true},
		{"Solve x + 3 = 9.", "x + 3 = 9", true},
		{"x=x", "x = x", true},
		{"a == b", "", false},
		{"What is 2 + 2 = ?", "", false},
		{"2 + 2 = 4", "", false},
		{"What is the powerhouse of the cell?", "", false},
		{"x = 1 and y = 2", "", false},
		{"Solve x + 500 = 1,000", "x + 500 = 1,000", true},
		{"1,000 = x + 500, so what is x?", "1,000 = x + 500", true},
		{"If x = 2,5 what is x?", "", false},
		{"x + 1,00 = 3", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Extract(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("Extract(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNumber_String(t *testing.T) {
	tests := []struct {
		num, den int64
		want     string
		exact    bool
	}{
		{6, 1, "6", true},
		{-4, 1, "-4", true},
		{5, 2, "2.5", true},
		{1, 8, "0.125", true},
		{1, 3, "0.333333", false},
		{2, 3, "0.666667", false},
		{-1, 3, "-0.333333", false},
		{-1, 3000000, "0", false},
		{1, 1000000, "0.000001", true},
	}
	for _, tt := range tests {
		n := NewNumber(ratOf(tt.num, tt.den))
		if got := n.String(); got != tt.want {
			t.Errorf("%d/%d: String() = %q, want %q", tt.num, tt.den, got, tt.want)
		}
		if n.Exact() != tt.exact {
			t.Errorf("%d/%d: Exact() = %v, want %v", tt.num, tt.den, n.Exact(), tt.exact)
		}
	}
}

func ratOf(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}

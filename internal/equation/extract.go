package equation

import (
	"strings"
	"unicode"
)

// Extract finds a single-variable equation embedded in free text, e.g.
// "Solve for x: x + 9 = 34" yields "x + 9 = 34". The text must contain
// exactly one '='. The equation is grown outwards from it across digits,
// operators, parentheses, spaces, decimal points, thousands separators and
// single letters that are not part of a word.
func Extract(s string) (string, bool) {
	if strings.Count(s, "=") != 1 {
		return "", false
	}
	runes := []rune(s)
	eq := 0
	for i, r := range runes {
		if r == '=' {
			eq = i
			break
		}
	}

	start := eq
	for start > 0 && equationRune(runes, start-1) {
		start--
	}
	end := eq + 1
	for end < len(runes) && equationRune(runes, end) {
		end++
	}
	// A comma inside a number that is not a thousands separator, e.g. "2,5".
	if splitsNumber(runes, start-1) || splitsNumber(runes, end) {
		return "", false
	}

	left := trimEquationSide(string(runes[start:eq]))
	right := trimEquationSide(string(runes[eq+1 : end]))
	if left == "" || right == "" {
		return "", false
	}
	if !strings.ContainsFunc(left+right, isVariableRune) {
		return "", false
	}
	return left + " = " + right, true
}

func equationRune(runes []rune, i int) bool {
	r := runes[i]
	switch {
	case r >= '0' && r <= '9':
		return true
	case strings.ContainsRune(" \t+-*/^().×÷−·", r):
		return true
	case r == ',':
		return thousandsSeparator(runes, i)
	case isVariableRune(r):
		prevLetter := i > 0 && unicode.IsLetter(runes[i-1])
		nextLetter := i+1 < len(runes) && unicode.IsLetter(runes[i+1])
		return !prevLetter && !nextLetter
	}
	return false
}

// thousandsSeparator reports whether runes[i] is a comma between a digit
// and a group of exactly three digits, as in "1,000".
func thousandsSeparator(runes []rune, i int) bool {
	if i < 1 || i+3 >= len(runes) {
		return false
	}
	if runes[i] != ',' || !isDigit(runes[i-1]) {
		return false
	}
	for _, r := range runes[i+1 : i+4] {
		if !isDigit(r) {
			return false
		}
	}
	return i+4 == len(runes) || !isDigit(runes[i+4])
}

// splitsNumber reports whether runes[i] is a comma with digits on both
// sides that is not a thousands separator, as in "2,5".
func splitsNumber(runes []rune, i int) bool {
	return i > 0 && i+1 < len(runes) && runes[i] == ',' &&
		isDigit(runes[i-1]) && isDigit(runes[i+1]) && !thousandsSeparator(runes, i)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isVariableRune(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// trimEquationSide drops surrounding spaces and a sentence-ending period.
func trimEquationSide(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimRight(s, "."))
}

// Package text turns raw question text into sentences, normalized tokens and
// frequency-ranked keywords. Everything here is pure and safe for concurrent use.
package text

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// ErrEmptyText is returned when the input has no words to analyze.
var ErrEmptyText = errors.New("text is empty")

// Normalized is the tokenized form of a question.
type Normalized struct {
	// Sentences holds the trimmed sentences in input order.
	Sentences []string

	// Words holds every lowercase word token, stopwords included.
	Words []string

	// Tokens holds Words minus stopwords, order preserved.
	Tokens []string
}

// Normalize splits s into sentences and tokens. It fails with ErrEmptyText
// when s is blank or contains nothing but punctuation.
func Normalize(s string) (*Normalized, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyText
	}

	words := Tokenize(s)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopword(w) {
			tokens = append(tokens, w)
		}
	}

	return &Normalized{
		Sentences: SplitSentences(s),
		Words:     words,
		Tokens:    tokens,
	}, nil
}

// abbreviations never terminate a sentence.
var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"inc.": true, "ltd.": true, "co.": true, "e.g.": true, "i.e.": true,
	"vs.": true, "st.": true, "jr.": true, "sr.": true,
}

// initialismRe matches dotted initialisms such as "U.S.".
var initialismRe = regexp.MustCompile(`^([a-z]\.){2,}$`)

// SplitSentences splits s after '.', '!' or '?' when the punctuation is
// followed by whitespace or the end of input. Decimals, abbreviations and
// dotted initialisms never end a sentence. Empty fragments are dropped.
func SplitSentences(s string) []string {
	var out []string
	start := 0

	for i := 0; i < len(s); i++ {
		if !isTerminal(s[i]) {
			continue
		}
		end := i + 1
		for end < len(s) && isTerminal(s[end]) {
			end++
		}
		if end < len(s) && !isSpaceByte(s[end]) {
			i = end - 1
			continue
		}
		if s[i] == '.' && end == i+1 && isProtected(s[start:end]) {
			continue
		}
		if frag := strings.TrimSpace(s[start:end]); frag != "" {
			out = append(out, frag)
		}
		start = end
		i = end - 1
	}

	if frag := strings.TrimSpace(s[start:]); frag != "" {
		out = append(out, frag)
	}
	return out
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// isProtected reports whether the fragment ends in an abbreviation.
func isProtected(fragment string) bool {
	fields := strings.Fields(fragment)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(fields[len(fields)-1])
	return abbreviations[last] || initialismRe.MatchString(last)
}

// Tokenize lowercases s, replaces punctuation with spaces and splits on
// whitespace. A '.' or ',' between two digits is kept so numbers survive.
// Tokens made only of punctuation or symbols are dropped.
func Tokenize(s string) []string {
	runes := []rune(strings.ToLower(s))
	for i, r := range runes {
		if !strings.ContainsRune(`.,;:!?()[]{}"'`, r) {
			continue
		}
		if (r == '.' || r == ',') && i > 0 && i < len(runes)-1 &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		runes[i] = ' '
	}

	fields := strings.Fields(string(runes))
	out := fields[:0]
	for _, f := range fields {
		if hasWordRune(f) {
			out = append(out, f)
		}
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

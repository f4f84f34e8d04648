// Package analysis classifies questions by subject, scores their difficulty
// and extracts keywords.
package analysis

import (
	"fmt"
	"strings"
)

// TypeTag is the subject of a question.
type TypeTag string

// Declaration order is significant: classifier ties resolve to the earliest tag.
const (
	TypeMath            TypeTag = "math"
	TypePhysics         TypeTag = "physics"
	TypeChemistry       TypeTag = "chemistry"
	TypeBiology         TypeTag = "biology"
	TypeComputerScience TypeTag = "computer_science"
	TypeOther           TypeTag = "other"
)

// AllTypeTags lists every TypeTag in declaration order.
var AllTypeTags = []TypeTag{
	TypeMath, TypePhysics, TypeChemistry, TypeBiology, TypeComputerScience, TypeOther,
}

// ParseTypeTag validates s as a TypeTag.
func ParseTypeTag(s string) (TypeTag, error) {
	for _, t := range AllTypeTags {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationError{
		Field:   "type",
		Message: fmt.Sprintf("unknown question type %q (want one of %s)", s, joinTags(AllTypeTags)),
	}
}

// DifficultyTag is the coarse difficulty level of a question.
type DifficultyTag string

const (
	DifficultyEasy   DifficultyTag = "easy"
	DifficultyMedium DifficultyTag = "medium"
	DifficultyHard   DifficultyTag = "hard"
	DifficultyExpert DifficultyTag = "expert"
)

// AllDifficultyTags lists every DifficultyTag from easiest to hardest.
var AllDifficultyTags = []DifficultyTag{
	DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert,
}

// ParseDifficultyTag validates s as a DifficultyTag.
func ParseDifficultyTag(s string) (DifficultyTag, error) {
	for _, d := range AllDifficultyTags {
		if string(d) == s {
			return d, nil
		}
	}
	return "", &ValidationError{
		Field:   "difficulty",
		Message: fmt.Sprintf("unknown difficulty %q (want one of %s)", s, joinTags(AllDifficultyTags)),
	}
}

// rank returns the position of d in AllDifficultyTags, or -1.
func (d DifficultyTag) rank() int {
	for i, x := range AllDifficultyTags {
		if x == d {
			return i
		}
	}
	return -1
}

// ValidationError reports caller input that cannot be processed.
type ValidationError struct {
	Field   string // Input field at fault, e.g. "content", "num_hints"
	Message string // Human-readable description of the problem
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Result is the analysis of one question. Each call returns a fresh value.
type Result struct {
	Type            TypeTag       `json:"type"`
	DifficultyScore float64       `json:"difficulty_score"`
	Difficulty      DifficultyTag `json:"difficulty"`
	WordCount       int           `json:"word_count"`
	SentenceCount   int           `json:"sentence_count"`
	Keywords        []string      `json:"keywords"`

	// RelevantConcepts is empty unless a concept index is configured.
	RelevantConcepts []Concept `json:"relevant_concepts,omitempty"`
}

// Document is the classifier input: the raw text and its normalized,
// stopword-free tokens.
type Document struct {
	Text   string
	Tokens []string
}

func joinTags[T ~string](tags []T) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

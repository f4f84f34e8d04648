package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds are the lower bounds of medium, hard and expert.
type Thresholds [3]float64

// DefaultThresholds splits [0,1] into four equal bands.
var DefaultThresholds = Thresholds{0.25, 0.5, 0.75}

// Validate checks the thresholds are strictly increasing inside (0,1).
func (t Thresholds) Validate() error {
	prev := 0.0
	for i, v := range t {
		if v <= prev || v >= 1 {
			return fmt.Errorf("difficulty threshold %d (%v) must be in (%v, 1)", i, v, prev)
		}
		prev = v
	}
	return nil
}

// Feature weights sum to 1.
const (
	weightLength     = 0.35
	weightWordLength = 0.20
	weightSentences  = 0.15
	weightMarkers    = 0.30
)

// markerWords signal multi-step reasoning.
var markerWords = map[string]bool{
	"then": true, "derive": true, "prove": true, "integrate": true,
	"differentiate": true, "simultaneous": true, "explain": true, "justify": true,
	"compare": true, "analyze": true, "evaluate": true, "determine": true,
	"show": true, "hence": true, "therefore": true, "calculate": true,
	"minimize": true, "maximize": true, "optimize": true,
}

// markerOperators signal symbolic manipulation.
var markerOperators = []string{"=", "^", "*", "/", "sqrt"}

// DifficultyScorer maps text features to a score in [0,1] and a level.
// It is immutable and safe for concurrent use.
type DifficultyScorer struct {
	thresholds Thresholds
}

// NewDifficultyScorer validates thresholds once.
func NewDifficultyScorer(t Thresholds) (*DifficultyScorer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &DifficultyScorer{thresholds: t}, nil
}

// Score computes the difficulty of text given its word tokens (stopwords
// included) and sentence count.
func (s *DifficultyScorer) Score(text string, words []string, sentenceCount int) (float64, DifficultyTag) {
	n := float64(len(words))
	length := n / (n + 20)

	var avgLen float64
	if len(words) > 0 {
		var total int
		for _, w := range words {
			total += len([]rune(w))
		}
		avgLen = float64(total) / n
	}
	wordLength := clamp01((avgLen - 3) / 6)

	var sentences float64
	if sentenceCount >= 1 {
		sc := float64(sentenceCount)
		sentences = (sc - 1) / (sc + 1)
	}

	m := float64(countMarkers(text, words))
	markers := m / (m + 3)

	score := weightLength*length + weightWordLength*wordLength +
		weightSentences*sentences + weightMarkers*markers
	score = round4(clamp01(score))
	return score, s.Level(score)
}

// Level maps a score to its band.
func (s *DifficultyScorer) Level(score float64) DifficultyTag {
	switch {
	case score < s.thresholds[0]:
		return DifficultyEasy
	case score < s.thresholds[1]:
		return DifficultyMedium
	case score < s.thresholds[2]:
		return DifficultyHard
	default:
		return DifficultyExpert
	}
}

// Clamp moves score into the band of level so the pair stays consistent.
func (s *DifficultyScorer) Clamp(score float64, level DifficultyTag) float64 {
	r := level.rank()
	if r < 0 {
		return score
	}
	lo, hi := 0.0, 1.0
	if r > 0 {
		lo = s.thresholds[r-1]
	}
	if r < len(s.thresholds) {
		// Bands are half-open except the last.
		hi = round4(s.thresholds[r] - 0.0001)
	}
	if hi < lo {
		hi = lo
	}
	return round4(math.Min(math.Max(score, lo), hi))
}

func countMarkers(text string, words []string) int {
	var m int
	for _, w := range words {
		if markerWords[w] {
			m++
		}
	}
	lower := strings.ToLower(text)
	for _, op := range markerOperators {
		m += strings.Count(lower, op)
	}
	m += min(strings.Count(text, "("), strings.Count(text, ")"))
	return m
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

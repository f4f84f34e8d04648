package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/text"
	"go.uber.org/zap"
)

// Input is a question to analyze with optional caller overrides.
type Input struct {
	Content        string
	TypeHint       *TypeTag
	DifficultyHint *DifficultyTag
}

// Analyzer runs normalization, classification, difficulty scoring and
// keyword extraction. It holds no per-call state.
type Analyzer struct {
	classifier  Classifier
	scorer      *DifficultyScorer
	concepts    *ConceptIndex
	reporter    *degrade.Reporter
	maxKeywords int
	logger      *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil classifier selects the default
// keyword classifier; maxKeywords <= 0 selects text.DefaultMaxKeywords.
func NewAnalyzer(classifier Classifier, scorer *DifficultyScorer, maxKeywords int, logger *zap.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		kc, err := NewKeywordClassifier(DefaultProfiles(), DefaultKeywordThreshold)
		if err != nil {
			return nil, err
		}
		classifier = kc
	}
	if scorer == nil {
		s, err := NewDifficultyScorer(DefaultThresholds)
		if err != nil {
			return nil, err
		}
		scorer = s
	}
	if maxKeywords <= 0 {
		maxKeywords = text.DefaultMaxKeywords
	}
	return &Analyzer{
		classifier:  classifier,
		scorer:      scorer,
		maxKeywords: maxKeywords,
		logger:      logger,
	}, nil
}

// WithConcepts attaches a concept index. Lookup failures are reported to
// reporter and leave RelevantConcepts empty.
func (a *Analyzer) WithConcepts(ix *ConceptIndex, reporter *degrade.Reporter) *Analyzer {
	a.concepts = ix
	a.reporter = reporter
	return a
}

// Analyze produces a fresh Result for in. Empty content and invalid hints
// fail with *ValidationError before any classification happens.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	if err := validateHints(in.TypeHint, in.DifficultyHint); err != nil {
		return nil, err
	}
	norm, err := normalize(in.Content)
	if err != nil {
		return nil, err
	}

	typ, err := a.classify(ctx, in.Content, norm, in.TypeHint)
	if err != nil {
		return nil, err
	}

	score, level := a.scorer.Score(in.Content, norm.Words, len(norm.Sentences))
	if in.DifficultyHint != nil {
		level = *in.DifficultyHint
		score = a.scorer.Clamp(score, level)
	}

	res := &Result{
		Type:            typ,
		DifficultyScore: score,
		Difficulty:      level,
		WordCount:       len(norm.Words),
		SentenceCount:   len(norm.Sentences),
		Keywords:        text.ExtractKeywords(norm.Tokens, a.maxKeywords),
	}
	if a.concepts != nil {
		concepts, err := a.concepts.Relevant(ctx, in.Content)
		if err != nil {
			a.reporter.Degraded(ctx, "concepts", err)
		}
		res.RelevantConcepts = concepts
	}
	a.logger.Debug("question analyzed",
		zap.String("type", string(res.Type)),
		zap.Float64("difficulty_score", res.DifficultyScore),
		zap.Int("word_count", res.WordCount),
	)
	return res, nil
}

// Classify returns the TypeTag of content, or hint unchanged when set.
func (a *Analyzer) Classify(ctx context.Context, content string, hint *TypeTag) (TypeTag, error) {
	if err := validateHints(hint, nil); err != nil {
		return "", err
	}
	norm, err := normalize(content)
	if err != nil {
		return "", err
	}
	return a.classify(ctx, content, norm, hint)
}

// Score returns the difficulty score and level of content.
func (a *Analyzer) Score(content string) (float64, DifficultyTag, error) {
	norm, err := normalize(content)
	if err != nil {
		return 0, "", err
	}
	score, level := a.scorer.Score(content, norm.Words, len(norm.Sentences))
	return score, level, nil
}

// Keywords returns the top keywords of content.
func (a *Analyzer) Keywords(content string) ([]string, error) {
	norm, err := normalize(content)
	if err != nil {
		return nil, err
	}
	return text.ExtractKeywords(norm.Tokens, a.maxKeywords), nil
}

// MaxKeywords returns the configured keyword limit.
func (a *Analyzer) MaxKeywords() int {
	return a.maxKeywords
}

func (a *Analyzer) classify(ctx context.Context, content string, norm *text.Normalized, hint *TypeTag) (TypeTag, error) {
	if hint != nil {
		return *hint, nil
	}
	typ, err := a.classifier.Classify(ctx, Document{Text: content, Tokens: norm.Tokens})
	if err != nil {
		return "", fmt.Errorf("classify question: %w", err)
	}
	return typ, nil
}

func normalize(content string) (*text.Normalized, error) {
	norm, err := text.Normalize(content)
	if errors.Is(err, text.ErrEmptyText) {
		return nil, &ValidationError{Field: "content", Message: "question text is empty"}
	}
	if err != nil {
		return nil, err
	}
	return norm, nil
}

func validateHints(typ *TypeTag, difficulty *DifficultyTag) error {
	if typ != nil {
		if _, err := ParseTypeTag(string(*typ)); err != nil {
			return err
		}
	}
	if difficulty != nil {
		if _, err := ParseDifficultyTag(string(*difficulty)); err != nil {
			return err
		}
	}
	return nil
}

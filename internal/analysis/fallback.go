package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/embedding"
	"go.uber.org/zap"
)

// FallbackClassifier runs Primary and, if it fails, Secondary. Failures are
// reported as degradations and never reach the caller unless Secondary also
// fails.
type FallbackClassifier struct {
	Primary   Classifier
	Secondary Classifier
	Reporter  *degrade.Reporter
}

func (c *FallbackClassifier) Classify(ctx context.Context, doc Document) (TypeTag, error) {
	tag, err := c.Primary.Classify(ctx, doc)
	if err == nil {
		return tag, nil
	}
	c.Reporter.Degraded(ctx, "classifier", err)
	return c.Secondary.Classify(ctx, doc)
}

// Classifier modes.
const (
	ModeKeyword   = "keyword"
	ModeEmbedding = "embedding"
	ModeAuto      = "auto"
)

// ClassifierConfig selects and tunes the type classifier.
type ClassifierConfig struct {
	Mode               string        `yaml:"mode"`
	KeywordThreshold   float64       `yaml:"keyword_threshold"`
	EmbeddingThreshold float64       `yaml:"embedding_threshold"`
	ConceptThreshold   float64       `yaml:"concept_threshold"`
	Timeout            time.Duration `yaml:"timeout"`
}

// DefaultClassifierConfig returns the default classifier settings.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Mode:               ModeAuto,
		KeywordThreshold:   DefaultKeywordThreshold,
		EmbeddingThreshold: DefaultEmbeddingThreshold,
		ConceptThreshold:   DefaultConceptThreshold,
		Timeout:            5 * time.Second,
	}
}

// Validate checks the mode and thresholds.
func (c ClassifierConfig) Validate() error {
	switch c.Mode {
	case ModeKeyword, ModeEmbedding, ModeAuto:
	default:
		return fmt.Errorf("unknown classifier mode %q (want keyword, embedding or auto)", c.Mode)
	}
	if c.KeywordThreshold < 0 {
		return fmt.Errorf("keyword threshold must be >= 0, got %v", c.KeywordThreshold)
	}
	if c.EmbeddingThreshold < -1 || c.EmbeddingThreshold > 1 {
		return fmt.Errorf("embedding threshold must be in [-1, 1], got %v", c.EmbeddingThreshold)
	}
	if c.ConceptThreshold < -1 || c.ConceptThreshold > 1 {
		return fmt.Errorf("concept threshold must be in [-1, 1], got %v", c.ConceptThreshold)
	}
	return nil
}

// NewClassifier picks the classifier once at startup. Embedding modes wrap
// the embedding classifier with a keyword fallback; when no engine is
// available or the type descriptions cannot be embedded, the keyword
// classifier is used alone.
func NewClassifier(ctx context.Context, cfg ClassifierConfig, engine embedding.Engine, reporter *degrade.Reporter, logger *zap.Logger) (Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keyword, err := NewKeywordClassifier(DefaultProfiles(), cfg.KeywordThreshold)
	if err != nil {
		return nil, err
	}
	if cfg.Mode == ModeKeyword {
		return keyword, nil
	}

	if engine == nil {
		if cfg.Mode == ModeEmbedding {
			logger.Warn("embedding classifier requested but no embedding engine configured; using keyword classifier")
		}
		return keyword, nil
	}

	semantic, err := NewEmbeddingClassifier(ctx, engine, cfg.EmbeddingThreshold, cfg.Timeout)
	if err != nil {
		logger.Warn("embedding classifier unavailable; using keyword classifier",
			zap.String("engine", engine.Name()), zap.Error(err))
		reporter.Degraded(ctx, "classifier", err)
		return keyword, nil
	}

	logger.Debug("embedding classifier ready", zap.String("engine", engine.Name()))
	return &FallbackClassifier{Primary: semantic, Secondary: keyword, Reporter: reporter}, nil
}

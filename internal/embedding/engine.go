// Package embedding turns text into vectors for semantic comparison.
// Backends: Google GenAI, OpenAI, and a local Ollama server.
package embedding

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embeddings.
	Dimensions() int

	// Name returns the engine name, e.g. "genai:gemini-embedding-001".
	Name() string
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "genai", "openai", "ollama", or "none".
	Provider string `yaml:"provider"`

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`

	// TaskType for GenAI: "SEMANTIC_SIMILARITY", "CLASSIFICATION", ...
	TaskType string `yaml:"task_type"`
}

// DefaultConfig returns defaults with embeddings disabled.
func DefaultConfig() Config {
	return Config{
		Provider:       "none",
		GenAIModel:     "gemini-embedding-001",
		OpenAIModel:    "text-embedding-3-small",
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		TaskType:       "CLASSIFICATION",
	}
}

// Validate checks the provider name and its required settings.
func (c Config) Validate() error {
	switch c.Provider {
	case "none", "", "ollama":
	case "genai":
		if c.GenAIAPIKey == "" {
			return fmt.Errorf("embedding genai_api_key is required for the genai provider")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("embedding openai_api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %q", c.Provider)
	}
	return nil
}

// NewEngine creates an embedding engine from configuration. Provider "none"
// returns a nil Engine and no error.
func NewEngine(ctx context.Context, cfg Config, logger *zap.Logger) (Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		engine Engine
		err    error
	)
	switch cfg.Provider {
	case "none", "":
		logger.Debug("embeddings disabled")
		return nil, nil
	case "genai":
		engine, err = NewGenAIEngine(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
	case "openai":
		engine, err = NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "ollama":
		engine, err = NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q (use genai, openai, ollama or none)", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s embedding engine: %w", cfg.Provider, err)
	}

	logger.Info("embedding engine ready",
		zap.String("engine", engine.Name()),
		zap.Int("dimensions", engine.Dimensions()),
	)
	return engine, nil
}

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}

	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}

// Package config loads questa's YAML configuration and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/cache"
	"github.com/abhisek/questa/internal/embedding"
	"github.com/abhisek/questa/internal/hints"
	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/logging"
	"github.com/abhisek/questa/internal/solution"
)

// Config is the complete application configuration.
type Config struct {
	Engine    EngineConfig     `yaml:"engine"`
	LLM       llm.Config       `yaml:"llm"`
	Embedding embedding.Config `yaml:"embedding"`
	Cache     cache.Config     `yaml:"cache"`
	Store     StoreConfig      `yaml:"store"`
	Logging   logging.Config   `yaml:"logging"`
}

// EngineConfig tunes analysis and generation.
type EngineConfig struct {
	MaxKeywords          int                       `yaml:"max_keywords"`
	DifficultyThresholds analysis.Thresholds       `yaml:"difficulty_thresholds"`
	Classifier           analysis.ClassifierConfig `yaml:"classifier"`
	Hints                hints.Config              `yaml:"hints"`
	Solution             solution.Config           `yaml:"solution"`

	// DefaultNumHints and DefaultMaxLevel apply when a caller leaves them unset.
	DefaultNumHints int `yaml:"default_num_hints"`
	DefaultMaxLevel int `yaml:"default_max_level"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	// Path is the database file. Empty selects store.DefaultDBPath.
	Path string `yaml:"path"`

	// RecordEvents logs LLM requests and degradations to the database.
	RecordEvents bool `yaml:"record_events"`
}

// Default returns the built-in configuration: templates only, keyword
// classification, in-memory cache.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxKeywords:          5,
			DifficultyThresholds: analysis.DefaultThresholds,
			Classifier:           analysis.DefaultClassifierConfig(),
			Hints:                hints.DefaultConfig(),
			Solution:             solution.DefaultConfig(),
			DefaultNumHints:      1,
			DefaultMaxLevel:      3,
		},
		LLM:       llm.DefaultConfig(),
		Embedding: embedding.DefaultConfig(),
		Cache:     cache.DefaultConfig(),
		Store:     StoreConfig{RecordEvents: true},
		Logging:   logging.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/questa/config.yaml, falling back to
// ~/.config/questa/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "questa", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// ${VAR} references in the file are expanded from the environment before
// parsing, then QUESTA_* variables override individual settings. When no
// LLM provider is named anywhere, standard API key variables are probed.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.LLM.Provider = ""

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "none"
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
			cfg.LLM.Anthropic.APIKey = firstNonEmpty(cfg.LLM.Anthropic.APIKey, found.Anthropic.APIKey)
			cfg.LLM.OpenAI.APIKey = firstNonEmpty(cfg.LLM.OpenAI.APIKey, found.OpenAI.APIKey)
			cfg.LLM.Gemini.APIKey = firstNonEmpty(cfg.LLM.Gemini.APIKey, found.Gemini.APIKey)
			cfg.LLM.OpenRouter.APIKey = firstNonEmpty(cfg.LLM.OpenRouter.APIKey, found.OpenRouter.APIKey)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.LLM.ApplyEnv()

	if p := os.Getenv("QUESTA_EMBEDDING_PROVIDER"); p != "" {
		c.Embedding.Provider = p
	}
	if k := os.Getenv("QUESTA_GEMINI_API_KEY"); k != "" && c.Embedding.GenAIAPIKey == "" {
		c.Embedding.GenAIAPIKey = k
	}
	if k := os.Getenv("QUESTA_OPENAI_API_KEY"); k != "" && c.Embedding.OpenAIAPIKey == "" {
		c.Embedding.OpenAIAPIKey = k
	}
	if m := os.Getenv("QUESTA_CLASSIFIER_MODE"); m != "" {
		c.Engine.Classifier.Mode = m
	}

	if b := os.Getenv("QUESTA_CACHE_BACKEND"); b != "" {
		c.Cache.Backend = b
	}
	if a := os.Getenv("QUESTA_REDIS_ADDR"); a != "" {
		c.Cache.Redis.Addr = a
	}
	if p := os.Getenv("QUESTA_REDIS_PASSWORD"); p != "" {
		c.Cache.Redis.Password = p
	}

	if p := os.Getenv("QUESTA_DB"); p != "" {
		c.Store.Path = p
	}
	if v := os.Getenv("QUESTA_RECORD_EVENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Store.RecordEvents = b
		}
	}

	if l := os.Getenv("QUESTA_LOG_LEVEL"); l != "" {
		c.Logging.Level = l
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Engine.MaxKeywords < 1 {
		return fmt.Errorf("engine.max_keywords must be >= 1, got %d", c.Engine.MaxKeywords)
	}
	if c.Engine.DefaultNumHints < 1 || c.Engine.DefaultMaxLevel < 1 {
		return fmt.Errorf("engine default_num_hints and default_max_level must be >= 1")
	}
	if err := c.Engine.DifficultyThresholds.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Classifier.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects a provider and tunes the middleware around it.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter",
	// "mock" or "none". "none" keeps every generator on its templates.
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one generative call including its retries. Overruns
	// surface as *ErrTimeout. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`

	// MaxConcurrency bounds in-flight requests across all callers. Zero
	// disables the limit.
	MaxConcurrency int `yaml:"max_concurrency"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig also serves OpenAI-compatible servers through BaseURL.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenRouterConfig takes vendor-qualified model IDs such as
// "google/gemini-2.5-flash".
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig shapes the exponential backoff between attempts.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig has generation disabled and small, fast models preselected
// for each vendor.
func DefaultConfig() Config {
	return Config{
		Provider:   "none",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout:        20 * time.Second,
		MaxConcurrency: 4,
	}
}

// vendor locates one provider's key and model inside Config.
type vendor struct {
	name   string
	stdKey string // conventional variable, e.g. OPENAI_API_KEY
	apiKey func(*Config) *string
	model  func(*Config) *string
}

// vendors is in DiscoverConfig probe order.
var vendors = []vendor{
	{"gemini", "GEMINI_API_KEY",
		func(c *Config) *string { return &c.Gemini.APIKey },
		func(c *Config) *string { return &c.Gemini.Model }},
	{"openai", "OPENAI_API_KEY",
		func(c *Config) *string { return &c.OpenAI.APIKey },
		func(c *Config) *string { return &c.OpenAI.Model }},
	{"anthropic", "ANTHROPIC_API_KEY",
		func(c *Config) *string { return &c.Anthropic.APIKey },
		func(c *Config) *string { return &c.Anthropic.Model }},
	{"openrouter", "OPENROUTER_API_KEY",
		func(c *Config) *string { return &c.OpenRouter.APIKey },
		func(c *Config) *string { return &c.OpenRouter.Model }},
}

// envVar returns QUESTA_<VENDOR>_<suffix>.
func (v vendor) envVar(suffix string) string {
	return "QUESTA_" + strings.ToUpper(v.name) + "_" + suffix
}

// ConfigFromEnv is DefaultConfig with ApplyEnv applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides c from QUESTA_LLM_PROVIDER, QUESTA_LLM_TIMEOUT,
// QUESTA_LLM_MAX_CONCURRENCY, QUESTA_OPENAI_BASE_URL and the per-vendor
// QUESTA_<VENDOR>_API_KEY and QUESTA_<VENDOR>_MODEL variables.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.Provider, "QUESTA_LLM_PROVIDER")
	for _, v := range vendors {
		setFromEnv(v.apiKey(c), v.envVar("API_KEY"))
		setFromEnv(v.model(c), v.envVar("MODEL"))
	}
	setFromEnv(&c.OpenAI.BaseURL, "QUESTA_OPENAI_BASE_URL")

	if d, err := time.ParseDuration(os.Getenv("QUESTA_LLM_TIMEOUT")); err == nil {
		c.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("QUESTA_LLM_MAX_CONCURRENCY")); err == nil {
		c.MaxConcurrency = n
	}
}

func setFromEnv(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// DiscoverConfig selects the first vendor whose conventional key variable
// is set, probing Gemini, OpenAI, Anthropic, then OpenRouter.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		key := os.Getenv(v.stdKey)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		*v.apiKey(&cfg) = key
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider exists and has its key.
func (c Config) Validate() error {
	switch c.Provider {
	case "mock", "none", "":
	default:
		v, ok := lookupVendor(c.Provider)
		if !ok {
			return fmt.Errorf("unknown LLM provider: %q", c.Provider)
		}
		if *v.apiKey(&c) == "" {
			return fmt.Errorf("%s is required for the %s provider", v.envVar("API_KEY"), v.name)
		}
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("llm max concurrency must be >= 0, got %d", c.MaxConcurrency)
	}
	return nil
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

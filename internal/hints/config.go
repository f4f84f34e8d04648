package hints

// Config holds hint phrasing settings.
type Config struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// Concurrency caps the levels phrased at once. Zero means no cap
	// beyond the provider's own limit.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns sensible defaults for hint phrasing.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   256,
		Temperature: 0.4,
		Concurrency: 4,
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/cache"
)

// clearEnv blanks every variable Load consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QUESTA_LLM_PROVIDER", "QUESTA_ANTHROPIC_API_KEY", "QUESTA_OPENAI_API_KEY",
		"QUESTA_GEMINI_API_KEY", "QUESTA_OPENROUTER_API_KEY", "QUESTA_LLM_TIMEOUT",
		"QUESTA_LLM_MAX_CONCURRENCY", "QUESTA_EMBEDDING_PROVIDER", "QUESTA_CLASSIFIER_MODE",
		"QUESTA_CACHE_BACKEND", "QUESTA_REDIS_ADDR", "QUESTA_REDIS_PASSWORD", "QUESTA_DB",
		"QUESTA_RECORD_EVENTS", "QUESTA_LOG_LEVEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Engine.MaxKeywords)
	assert.Equal(t, analysis.DefaultThresholds, cfg.Engine.DifficultyThresholds)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")

	path := writeConfig(t, `
engine:
  max_keywords: 3
  difficulty_thresholds: [0.2, 0.4, 0.8]
  classifier:
    mode: keyword
  hints:
    concurrency: 2
llm:
  provider: mock
  timeout: 3s
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: cache:6379
    password: ${TEST_REDIS_PASSWORD}
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.MaxKeywords)
	assert.Equal(t, analysis.Thresholds{0.2, 0.4, 0.8}, cfg.Engine.DifficultyThresholds)
	assert.Equal(t, analysis.ModeKeyword, cfg.Engine.Classifier.Mode)
	assert.Equal(t, 2, cfg.Engine.Hints.Concurrency)
	assert.Equal(t, 256, cfg.Engine.Hints.MaxTokens, "unset fields keep defaults")
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "s3cret", cfg.Cache.Redis.Password)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUESTA_LLM_PROVIDER", "openai")
	t.Setenv("QUESTA_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUESTA_CACHE_BACKEND", "none")
	t.Setenv("QUESTA_DB", "/tmp/q.db")
	t.Setenv("QUESTA_RECORD_EVENTS", "false")

	cfg, err := Load(writeConfig(t, "llm:\n  provider: anthropic\n"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedding.OpenAIAPIKey)
	assert.Equal(t, cache.BackendNone, cfg.Cache.Backend)
	assert.Equal(t, "/tmp/q.db", cfg.Store.Path)
	assert.False(t, cfg.Store.RecordEvents)
}

func TestLoad_DiscoversProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
}

func TestLoad_ExplicitNoneSkipsDiscovery(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(writeConfig(t, "llm:\n  provider: none\n"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.LLM.Provider)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := map[string]string{
		"thresholds": "engine:\n  difficulty_thresholds: [0.5, 0.4, 0.8]\n",
		"classifier": "engine:\n  classifier:\n    mode: psychic\n",
		"provider":   "llm:\n  provider: carrier-pigeon\n",
		"cache":      "cache:\n  backend: floppy\n",
		"logging":    "logging:\n  format: xml\n",
		"keywords":   "engine:\n  max_keywords: 0\n",
		"yaml":       "engine: [\n",
		"api key":    "llm:\n  provider: anthropic\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

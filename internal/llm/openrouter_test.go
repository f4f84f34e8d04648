package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterConfigErrors(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"})
	require.ErrorContains(t, err, "API key")

	_, err = NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test"})
	require.ErrorContains(t, err, "model")
}

func TestOpenRouterPassesModelThrough(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-haiku-4.5"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4.5", p.ModelID())
	assert.Equal(t, "openrouter", vendorOf(p))
}

func TestOpenRouterSendsAttribution(t *testing.T) {
	var got http.Header
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion("Balance the equation first.", "stop"))
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), hintRequest)
	require.NoError(t, err)

	assert.Equal(t, "Balance the equation first.", resp.Text())
	assert.Equal(t, "google/gemini-2.5-flash", model)
	assert.Equal(t, "questa", got.Get("X-Title"))
	assert.NotEmpty(t, got.Get("HTTP-Referer"))
	assert.Equal(t, "Bearer sk-or-test", got.Get("Authorization"))
}

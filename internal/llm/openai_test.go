package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openaiServer(t *testing.T, model string, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = srv.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(config), model: model}
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 12, "total_tokens": 42},
	}
}

func serveJSON(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func openaiError(status int, code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": code, "type": code, "code": code},
		})
	}
}

var solutionSchema = &Schema{
	Name: "solution",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"answer": map[string]any{"type": "string"}},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

func TestOpenAIGenerateText(t *testing.T) {
	p := openaiServer(t, "gpt-4o-mini", serveJSON(chatCompletion("  Subtract 3 from both sides.  ", "stop")))

	resp, err := p.Generate(context.Background(), hintRequest)
	require.NoError(t, err)

	assert.Equal(t, "Subtract 3 from both sides.", resp.Text())
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
}

func TestOpenAIStructured(t *testing.T) {
	var sent struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		Temperature    *float64 `json:"temperature"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name string `json:"name"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := openaiServer(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		serveJSON(chatCompletion("```json\n{\"answer\":\"x = 6\"}\n```", "stop"))(w, r)
	})

	req := hintRequest
	req.Schema = solutionSchema
	req.Temperature = 0.4
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.JSONEq(t, `{"answer":"x = 6"}`, string(resp.Content))
	assert.Equal(t, "json_schema", sent.ResponseFormat.Type)
	assert.Equal(t, "solution", sent.ResponseFormat.JSONSchema.Name)
	assert.Nil(t, sent.Temperature)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, sent.Messages[0].Role)
}

func TestOpenAIStructuredViolation(t *testing.T) {
	p := openaiServer(t, "gpt-4o-mini", serveJSON(chatCompletion(`{"steps":[]}`, "stop")))

	req := hintRequest
	req.Schema = solutionSchema
	_, err := p.Generate(context.Background(), req)

	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
}

func TestOpenAIStopReasons(t *testing.T) {
	p := openaiServer(t, "gpt-4o-mini", serveJSON(chatCompletion(`{"answer":"x =`, "length")))
	req := hintRequest
	req.Schema = solutionSchema
	_, err := p.Generate(context.Background(), req)
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)

	p = openaiServer(t, "gpt-4o-mini", serveJSON(chatCompletion("partial answer", "length")))
	resp, err := p.Generate(context.Background(), hintRequest)
	require.NoError(t, err)
	assert.Equal(t, StopMaxTokens, resp.StopReason)
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{http.StatusBadGateway, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.ErrorAs(t, err, &unavail)
		}},
		{http.StatusNotFound, func(t *testing.T, err error) {
			var rej *ErrRejected
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, http.StatusNotFound, rej.StatusCode)
		}},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := openaiServer(t, "gpt-4o-mini", openaiError(tt.status, "err"))
			_, err := p.Generate(context.Background(), hintRequest)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSupportsTemperature(t *testing.T) {
	for model, want := range map[string]bool{
		"gpt-4o-mini":        true,
		"gpt-4.1-mini":       true,
		"gpt-5-mini":         false,
		"o3-mini":            false,
		"openai/o4-mini":     false,
		"meta-llama/llama-4": true,
	} {
		assert.Equal(t, want, supportsTemperature(model), model)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"})
	require.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1-mini", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", p.ModelID())
	assert.Equal(t, "openai", vendorOf(p))
}

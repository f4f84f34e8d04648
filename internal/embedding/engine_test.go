package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestNewEngine(t *testing.T) {
	ctx := context.Background()

	e, err := NewEngine(ctx, Config{Provider: "none"}, nil)
	if err != nil || e != nil {
		t.Fatalf("none: got %v, %v", e, err)
	}

	e, err = NewEngine(ctx, Config{Provider: "ollama"}, nil)
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if e.Name() != "ollama:embeddinggemma" {
		t.Fatalf("Name = %q", e.Name())
	}

	e, err = NewEngine(ctx, Config{Provider: "openai", OpenAIAPIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if e.Dimensions() != 1536 {
		t.Fatalf("Dimensions = %d, want 1536", e.Dimensions())
	}

	if _, err := NewEngine(ctx, Config{Provider: "openai"}, nil); err == nil {
		t.Fatal("expected error for missing openai key")
	}
	if _, err := NewEngine(ctx, Config{Provider: "word2vec"}, nil); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if err := (Config{Provider: "genai"}).Validate(); err == nil {
		t.Fatal("expected error for genai without key")
	}
	if err := (Config{Provider: "bogus"}).Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOllamaEngine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Prompt == "fail" {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt)), 1}})
	}))
	defer server.Close()

	e, err := NewOllamaEngine(server.URL, "test-model")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	vecs, err := e.EmbedBatch(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 2 || vecs[1][0] != 4 {
		t.Fatalf("unexpected vectors: %v", vecs)
	}

	if _, err := e.Embed(context.Background(), "fail"); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestOpenAIEngine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Return items out of order to exercise index mapping.
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), 0.5},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	defer server.Close()

	e, err := NewOpenAIEngine("sk-test", "text-embedding-3-small", server.URL+"/v1")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}
	for i, v := range vecs {
		if v[0] != float32(i) {
			t.Fatalf("vecs[%d] = %v, want first component %d", i, v, i)
		}
	}
}

func TestMockEngine(t *testing.T) {
	m := NewMockEngine(map[string][]float32{"cell": {1, 0}})

	v, err := m.Embed(context.Background(), "cell")
	if err != nil || v[0] != 1 {
		t.Fatalf("Embed(cell) = %v, %v", v, err)
	}
	if _, err := m.Embed(context.Background(), "unknown"); err == nil {
		t.Fatal("expected error for unknown text without default")
	}

	m.Default = []float32{0, 1}
	if v, err := m.Embed(context.Background(), "unknown"); err != nil || v[1] != 1 {
		t.Fatalf("Embed(unknown) = %v, %v", v, err)
	}

	m.Err = errors.New("down")
	if _, err := m.EmbedBatch(context.Background(), []string{"cell"}); err == nil {
		t.Fatal("expected configured error")
	}
	if m.Calls() != 4 {
		t.Fatalf("Calls = %d, want 4", m.Calls())
	}
}

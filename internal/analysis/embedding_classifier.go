package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/questa/internal/embedding"
	"github.com/abhisek/questa/internal/llm"
)

// DefaultEmbeddingThreshold is the minimum cosine similarity for a match.
const DefaultEmbeddingThreshold = 0.30

// typeDescriptions holds the canonical description embedded for each TypeTag.
var typeDescriptions = map[TypeTag]string{
	TypeMath:            "Mathematics problem involving equations, calculations, algebra, geometry, or numerical analysis",
	TypePhysics:         "Physics problem involving forces, motion, energy, mechanics, electricity, or thermodynamics",
	TypeChemistry:       "Chemistry problem involving elements, compounds, reactions, bonds, or molecular structures",
	TypeBiology:         "Biology problem involving cells, organisms, genetics, evolution, ecology, or physiology",
	TypeComputerScience: "Computer science problem involving algorithms, data structures, programming, complexity, or computational theory",
	TypeOther:           "General knowledge problem not specific to math, physics, chemistry, biology, or computer science",
}

// TypeDescription returns the canonical description of t.
func TypeDescription(t TypeTag) string {
	return typeDescriptions[t]
}

// EmbeddingClassifier picks the TypeTag whose description is most similar
// to the document. Description vectors are computed once at construction.
type EmbeddingClassifier struct {
	engine    embedding.Engine
	vectors   [][]float32 // parallel to AllTypeTags
	threshold float64
	timeout   time.Duration
}

// NewEmbeddingClassifier embeds every type description. It fails if any
// description cannot be embedded. A non-positive threshold selects
// DefaultEmbeddingThreshold; a non-positive timeout disables the per-call bound.
func NewEmbeddingClassifier(ctx context.Context, engine embedding.Engine, threshold float64, timeout time.Duration) (*EmbeddingClassifier, error) {
	if engine == nil {
		return nil, errors.New("embedding classifier requires an engine")
	}

	texts := make([]string, len(AllTypeTags))
	for i, t := range AllTypeTags {
		d, ok := typeDescriptions[t]
		if !ok {
			return nil, fmt.Errorf("no description for type %q", t)
		}
		texts[i] = d
	}

	vectors, err := engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed type descriptions: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed type descriptions: got %d vectors for %d descriptions", len(vectors), len(texts))
	}

	if threshold <= 0 {
		threshold = DefaultEmbeddingThreshold
	}
	return &EmbeddingClassifier{
		engine:    engine,
		vectors:   vectors,
		threshold: threshold,
		timeout:   timeout,
	}, nil
}

// Classify embeds the document text and returns the closest TypeTag, or
// TypeOther when nothing reaches the threshold. An expired context or a
// per-call timeout is returned as an error.
func (c *EmbeddingClassifier) Classify(ctx context.Context, doc Document) (TypeTag, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	vec, err := c.engine.Embed(callCtx, doc.Text)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &llm.ErrTimeout{After: c.timeout, Err: err}
		}
		return "", fmt.Errorf("embed question: %w", err)
	}

	best, bestSim := TypeOther, -2.0
	for i, t := range AllTypeTags {
		sim, err := embedding.CosineSimilarity(vec, c.vectors[i])
		if err != nil {
			return "", fmt.Errorf("compare with %s: %w", t, err)
		}
		if sim > bestSim {
			best, bestSim = t, sim
		}
	}
	if bestSim < c.threshold {
		return TypeOther, nil
	}
	return best, nil
}

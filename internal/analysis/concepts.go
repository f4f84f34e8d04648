package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/questa/internal/embedding"
	"github.com/abhisek/questa/internal/llm"
)

// DefaultConceptThreshold is the cosine similarity a concept must exceed
// to count as relevant.
const DefaultConceptThreshold = 0.5

// maxConcepts caps Result.RelevantConcepts.
const maxConcepts = 3

// Concept is a knowledge-base entry related to a question.
type Concept struct {
	Name        string  `json:"concept"`
	Explanation string  `json:"explanation"`
	Relevance   float64 `json:"relevance"`
}

type conceptEntry struct {
	name        string
	explanation string
}

var knowledgeBase = []conceptEntry{
	{"algebra", "Algebra is a branch of mathematics dealing with symbols and the rules for manipulating these symbols."},
	{"force", "Force is any interaction that, when unopposed, will change the motion of an object."},
	{"chemical_bond", "A chemical bond is a lasting attraction between atoms that enables the formation of molecules."},
	{"cell_division", "Cell division is the process by which a parent cell divides into two or more daughter cells."},
	{"algorithm", "An algorithm is a step-by-step procedure for calculations or problem-solving operations."},
}

// ConceptIndex finds knowledge-base concepts close to a question.
// Explanation vectors are computed once at construction.
type ConceptIndex struct {
	engine    embedding.Engine
	vectors   [][]float32 // parallel to knowledgeBase
	threshold float64
	timeout   time.Duration
}

// NewConceptIndex embeds every concept explanation. A non-positive
// threshold selects DefaultConceptThreshold.
func NewConceptIndex(ctx context.Context, engine embedding.Engine, threshold float64, timeout time.Duration) (*ConceptIndex, error) {
	if engine == nil {
		return nil, errors.New("concept index requires an engine")
	}
	texts := make([]string, len(knowledgeBase))
	for i, c := range knowledgeBase {
		texts[i] = c.explanation
	}
	vectors, err := engine.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed concepts: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed concepts: got %d vectors for %d explanations", len(vectors), len(texts))
	}
	if threshold <= 0 {
		threshold = DefaultConceptThreshold
	}
	return &ConceptIndex{engine: engine, vectors: vectors, threshold: threshold, timeout: timeout}, nil
}

// Relevant returns up to three concepts above the threshold, most relevant
// first.
func (ix *ConceptIndex) Relevant(ctx context.Context, content string) ([]Concept, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	callCtx := ctx
	if ix.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, ix.timeout)
		defer cancel()
	}

	vec, err := ix.engine.Embed(callCtx, content)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &llm.ErrTimeout{After: ix.timeout, Err: err}
		}
		return nil, fmt.Errorf("embed question: %w", err)
	}

	var out []Concept
	for i, c := range knowledgeBase {
		sim, err := embedding.CosineSimilarity(vec, ix.vectors[i])
		if err != nil {
			return nil, fmt.Errorf("compare with %s: %w", c.name, err)
		}
		if sim > ix.threshold {
			out = append(out, Concept{Name: c.name, Explanation: c.explanation, Relevance: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })
	if len(out) > maxConcepts {
		out = out[:maxConcepts]
	}
	return out, nil
}

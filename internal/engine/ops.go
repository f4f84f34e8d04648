package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/cache"
	"github.com/abhisek/questa/internal/equation"
	"github.com/abhisek/questa/internal/hints"
	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/solution"
)

// cacheVersion changes whenever cached artifact shapes change.
const cacheVersion = "v1"

// begin tags ctx with a fresh request ID so LLM events can be joined back
// to the operation that caused them.
func (e *Engine) begin(ctx context.Context, op string) (context.Context, *zap.Logger) {
	id := llm.RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = llm.WithRequestID(ctx, id)
	}
	return ctx, e.logger.With(zap.String("request_id", id), zap.String("op", op))
}

// Analyze classifies content, scores its difficulty and extracts keywords.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (*analysis.Result, error) {
	ctx, log := e.begin(ctx, "analyze")
	typ, err := parseTypeHint(req.TypeHint)
	if err != nil {
		return nil, err
	}
	diff, err := parseDifficultyHint(req.DifficultyHint)
	if err != nil {
		return nil, err
	}
	res, err := e.analyzer.Analyze(ctx, analysis.Input{Content: req.Content, TypeHint: typ, DifficultyHint: diff})
	if err != nil {
		log.Debug("analyze rejected", zap.Error(err))
		return nil, err
	}
	return res, nil
}

// Classify returns the question type, or the hint when given.
func (e *Engine) Classify(ctx context.Context, content, typeHint string) (analysis.TypeTag, error) {
	typ, err := parseTypeHint(typeHint)
	if err != nil {
		return "", err
	}
	return e.analyzer.Classify(ctx, content, typ)
}

// Score returns the difficulty score and level of content.
func (e *Engine) Score(content string) (float64, analysis.DifficultyTag, error) {
	return e.analyzer.Score(content)
}

// Keywords returns the ranked keywords of content.
func (e *Engine) Keywords(content string) ([]string, error) {
	return e.analyzer.Keywords(content)
}

// SolveEquation extracts and solves the equation in content. It is the only
// operation that surfaces *equation.ParseError.
func (e *Engine) SolveEquation(ctx context.Context, content string) (*equation.Solution, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &analysis.ValidationError{Field: "content", Message: "must not be empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return equation.SolveText(content)
}

// GenerateHints analyzes content and returns min(NumHints, MaxLevel)
// progressive hints. Results are cached per question and request shape.
func (e *Engine) GenerateHints(ctx context.Context, req HintRequest) ([]hints.Hint, error) {
	ctx, log := e.begin(ctx, "hints")
	if req.NumHints < 1 {
		return nil, &analysis.ValidationError{Field: "num_hints", Message: fmt.Sprintf("must be at least 1, got %d", req.NumHints)}
	}
	if req.MaxLevel < 1 {
		return nil, &analysis.ValidationError{Field: "max_level", Message: fmt.Sprintf("must be at least 1, got %d", req.MaxLevel)}
	}
	res, err := e.Analyze(ctx, AnalyzeRequest{Content: req.Content, TypeHint: req.TypeHint})
	if err != nil {
		return nil, err
	}

	key := cacheKey("hints", string(res.Type), req.Content, fmt.Sprint(req.NumHints), fmt.Sprint(req.MaxLevel))
	out, err := cache.Cached(ctx, e.memo, key, func(ctx context.Context) ([]hints.Hint, error) {
		log.Debug("generating hints", zap.String("type", string(res.Type)))
		return e.hints.Generate(ctx, hints.Request{
			Content:  req.Content,
			Analysis: res,
			NumHints: req.NumHints,
			MaxLevel: req.MaxLevel,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// storedSolution is the cached form of a solution. Solution's own JSON
// joins its steps, which would not round-trip.
type storedSolution struct {
	Content string   `json:"content"`
	Steps   []string `json:"steps"`
}

// GenerateSolution analyzes content and returns its solution.
func (e *Engine) GenerateSolution(ctx context.Context, req SolutionRequest) (*solution.Solution, error) {
	ctx, log := e.begin(ctx, "solution")
	res, err := e.Analyze(ctx, AnalyzeRequest{Content: req.Content, TypeHint: req.TypeHint})
	if err != nil {
		return nil, err
	}

	key := cacheKey("solution", string(res.Type), req.Content, fmt.Sprint(req.StepByStep))
	out, err := cache.Cached(ctx, e.memo, key, func(ctx context.Context) (storedSolution, error) {
		log.Debug("generating solution", zap.String("type", string(res.Type)))
		sol, err := e.solutions.Generate(ctx, solution.Request{
			Type:       res.Type,
			Analysis:   res,
			Content:    req.Content,
			StepByStep: req.StepByStep,
		})
		if err != nil {
			return storedSolution{}, err
		}
		return storedSolution{Content: sol.Content, Steps: sol.Steps}, nil
	})
	if err != nil {
		return nil, err
	}
	return &solution.Solution{Content: out.Content, Steps: out.Steps}, nil
}

// cacheKey hashes the parts that identify one generated artifact.
func cacheKey(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return cacheVersion + ":" + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

package solution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/equation"
	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/text"
)

const component = "solution"

// Generator builds solutions. It is safe for concurrent use.
type Generator struct {
	provider  llm.Provider
	templates compiledTemplates
	cfg       Config
	reporter  *degrade.Reporter
	logger    *zap.Logger
}

// NewGenerator creates a solution generator. provider may be nil. A nil
// templates slice selects DefaultTemplates.
func NewGenerator(provider llm.Provider, templates []Template, cfg Config, reporter *degrade.Reporter, logger *zap.Logger) (*Generator, error) {
	if templates == nil {
		templates = DefaultTemplates()
	}
	compiled, err := compileTemplates(templates)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider:  provider,
		templates: compiled,
		cfg:       cfg,
		reporter:  reporter,
		logger:    logger,
	}, nil
}

// Generate solves the question. Math questions with a parseable equation
// are solved exactly; everything else uses the provider when configured
// and the type's templates otherwise. Only invalid requests fail.
func (g *Generator) Generate(ctx context.Context, req Request) (*Solution, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	typ := req.typeTag()

	if typ == analysis.TypeMath {
		sol, err := equation.SolveText(req.Content)
		if err == nil {
			return fromEquation(sol, req.StepByStep), nil
		}
		g.logger.Debug("no solvable equation, using prose", zap.Error(err))
	}

	if g.provider != nil {
		sol, err := g.generate(ctx, req)
		if err == nil {
			return sol, nil
		}
		g.reporter.Degraded(ctx, component, err)
	}
	return g.templates.render(typ, req.keywords(), req.StepByStep)
}

func fromEquation(sol *equation.Solution, withSteps bool) *Solution {
	out := &Solution{Content: sol.Summary()}
	if withSteps {
		out.Steps = append([]string(nil), sol.Steps...)
	}
	return out
}

type solutionOutput struct {
	Summary     string `json:"summary"`
	Explanation string `json:"explanation"`
}

func (g *Generator) generate(ctx context.Context, req Request) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, "solution")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: solutionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSolutionUserMessage(req)},
		},
		Schema:      SolutionSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("solution generation: %w", err)
	}

	var out solutionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty summary")}
	}

	sol := &Solution{Content: summary}
	if !req.StepByStep {
		return sol, nil
	}
	sol.Steps = splitSteps(out.Explanation)
	if len(sol.Steps) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("no steps in explanation")}
	}
	return sol, nil
}

var stepLineRe = regexp.MustCompile(`(?i)^\s*step\s+\d+\s*[:.)-]\s*`)

// splitSteps breaks an explanation into steps. Lines labelled "Step N:"
// are used when present, otherwise the explanation is split into sentences.
func splitSteps(explanation string) []string {
	var labelled []string
	for _, line := range strings.Split(explanation, "\n") {
		if loc := stepLineRe.FindStringIndex(line); loc != nil {
			if s := strings.TrimSpace(line[loc[1]:]); s != "" {
				labelled = append(labelled, s)
			}
		}
	}
	if len(labelled) > 0 {
		return labelled
	}
	return text.SplitSentences(strings.TrimSpace(explanation))
}

package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/equation"
	"github.com/abhisek/questa/internal/llm"
)

const component = "hints"

// Generator builds hint sequences. It is safe for concurrent use.
type Generator struct {
	provider  llm.Provider
	templates compiledTemplates
	cfg       Config
	reporter  *degrade.Reporter
	logger    *zap.Logger
}

// NewGenerator creates a hint generator. provider may be nil, in which case
// templates are used verbatim. A nil templates slice selects
// DefaultTemplates.
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

// Generate returns min(NumHints, MaxLevel) hints with levels 1..n and
// pairwise-distinct content. Only invalid requests fail; generative
// failures fall back to template text level by level.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Hint, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	n := req.count()

	sol := req.Equation
	if sol == nil && req.Analysis.Type == analysis.TypeMath {
		var err error
		sol, err = equation.SolveText(req.Content)
		if err != nil {
			g.logger.Debug("no solvable equation, using templates", zap.Error(err))
			sol = nil
		}
	}

	var sources []string
	if sol != nil && len(sol.Steps) > 0 {
		sources = revealSteps(sol.Steps)
	} else {
		levels, err := g.templates.render(req.Analysis.Type, req.Analysis.Keywords)
		if err != nil {
			return nil, err
		}
		sources = g.phrase(ctx, req, levels[:min(n, len(levels))], len(levels))
	}

	return assemble(sources, n), nil
}

// revealSteps returns one source per level where level i shows the first i
// solver steps.
func revealSteps(steps []string) []string {
	out := make([]string, len(steps))
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Step %d: %s", i+1, s)
		out[i] = b.String()
	}
	return out
}

// assemble builds n hints from sources. Levels with no source, or whose
// source repeats an earlier level, get the no-further-hints marker.
func assemble(sources []string, n int) []Hint {
	seen := make(map[string]bool, n)
	hints := make([]Hint, n)
	for i := range hints {
		level := i + 1
		content := NoFurtherHints(level)
		if i < len(sources) && sources[i] != "" && !seen[sources[i]] {
			content = sources[i]
		}
		seen[content] = true
		hints[i] = Hint{Level: level, Content: content}
	}
	return hints
}

// phrase asks the provider to word each template level. Any level that
// cannot be phrased keeps its template text.
func (g *Generator) phrase(ctx context.Context, req Request, levels []string, total int) []string {
	out := make([]string, len(levels))
	copy(out, levels)
	if g.provider == nil || len(levels) == 0 {
		return out
	}

	ctx = llm.WithPurpose(ctx, "hint")
	var eg errgroup.Group
	if g.cfg.Concurrency > 0 {
		eg.SetLimit(g.cfg.Concurrency)
	}
	phrased := make([]string, len(levels))
	errs := make([]error, len(levels))
	for i := range levels {
		eg.Go(func() error {
			phrased[i], errs[i] = g.phraseLevel(ctx, req, i+1, total, levels[i])
			return nil
		})
	}
	_ = eg.Wait()

	used := make(map[string]bool, 2*len(levels))
	for _, l := range levels {
		used[l] = true
	}
	for i := range levels {
		err := errs[i]
		if err == nil && phrased[i] != levels[i] && used[phrased[i]] {
			err = fmt.Errorf("level %d: %w", i+1, degrade.ErrDuplicate)
		}
		if err != nil {
			g.reporter.Degraded(ctx, component, err)
			continue
		}
		used[phrased[i]] = true
		out[i] = phrased[i]
	}
	return out
}

func (g *Generator) phraseLevel(ctx context.Context, req Request, level, total int, guidance string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("level %d: %w", level, err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: hintSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildHintUserMessage(req.Content, req.Analysis, level, total, guidance)},
		},
		Schema:      HintSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("level %d: %w", level, err)
	}

	var out struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("level %d: %w", level, &llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	hint := strings.TrimSpace(out.Hint)
	if hint == "" {
		return "", fmt.Errorf("level %d: %w", level, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty hint")})
	}
	return hint, nil
}

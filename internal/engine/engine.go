// Package engine wires analysis, equation solving, hint and solution
// generation behind one facade. Shared capabilities (LLM provider,
// embedding engine, cache, event store) are built once by Open and
// released by Close.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/cache"
	"github.com/abhisek/questa/internal/config"
	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/embedding"
	"github.com/abhisek/questa/internal/hints"
	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/solution"
	"github.com/abhisek/questa/internal/store"
)

// Engine is safe for concurrent use.
type Engine struct {
	cfg       *config.Config
	analyzer  *analysis.Analyzer
	hints     *hints.Generator
	solutions *solution.Generator
	memo      *cache.Memo
	provider  llm.Provider
	embedder  embedding.Engine
	logger    *zap.Logger

	closers []func() error
}

type options struct {
	provider    llm.Provider
	embedder    embedding.Engine
	store       *store.Store
	cacheStore  cache.Store
	hasProvider bool
	hasEmbedder bool
}

// Option customizes Open.
type Option func(*options)

// WithProvider uses p as is instead of building one from configuration.
// A nil p disables generation.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider, o.hasProvider = p, true }
}

// WithEmbedder uses e instead of building one from configuration.
func WithEmbedder(e embedding.Engine) Option {
	return func(o *options) { o.embedder, o.hasEmbedder = e, true }
}

// WithStore uses an already open store. The caller keeps ownership.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithCacheStore uses c as the artifact cache. The caller keeps ownership.
func WithCacheStore(c cache.Store) Option {
	return func(o *options) { o.cacheStore = c }
}

// Open builds an Engine from cfg. logger may be nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{cfg: cfg, logger: logger}
	if err := e.open(ctx, o); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) open(ctx context.Context, o options) error {
	cfg := e.cfg

	db := o.store
	if db == nil && (cfg.Store.RecordEvents || cfg.Cache.Backend == cache.BackendSQLite) {
		path, err := dbPath(cfg.Store.Path)
		if err != nil {
			return err
		}
		s, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		e.closers = append(e.closers, s.Close)
		db = s
	}

	var events store.EventRepo
	if db != nil && cfg.Store.RecordEvents {
		events = db.EventRepo()
	}
	reporter := degrade.NewReporter(e.logger, events)

	if o.hasProvider {
		e.provider = o.provider
	} else {
		p, err := llm.NewProvider(ctx, cfg.LLM, events, e.logger)
		if err != nil {
			return err
		}
		e.provider = p
	}

	if o.hasEmbedder {
		e.embedder = o.embedder
	} else {
		emb, err := embedding.NewEngine(ctx, cfg.Embedding, e.logger)
		if err != nil {
			return err
		}
		e.embedder = emb
	}

	classifier, err := analysis.NewClassifier(ctx, cfg.Engine.Classifier, e.embedder, reporter, e.logger)
	if err != nil {
		return err
	}
	scorer, err := analysis.NewDifficultyScorer(cfg.Engine.DifficultyThresholds)
	if err != nil {
		return err
	}
	if e.analyzer, err = analysis.NewAnalyzer(classifier, scorer, cfg.Engine.MaxKeywords, e.logger); err != nil {
		return err
	}
	if e.embedder != nil {
		ix, err := analysis.NewConceptIndex(ctx, e.embedder, cfg.Engine.Classifier.ConceptThreshold, cfg.Engine.Classifier.Timeout)
		if err != nil {
			e.logger.Warn("concept index unavailable", zap.String("engine", e.embedder.Name()), zap.Error(err))
			reporter.Degraded(ctx, "concepts", err)
		} else {
			e.analyzer.WithConcepts(ix, reporter)
		}
	}
	if e.hints, err = hints.NewGenerator(e.provider, nil, cfg.Engine.Hints, reporter, e.logger); err != nil {
		return err
	}
	if e.solutions, err = solution.NewGenerator(e.provider, nil, cfg.Engine.Solution, reporter, e.logger); err != nil {
		return err
	}

	cs := o.cacheStore
	if cs == nil {
		var artifacts store.ArtifactRepo
		if db != nil {
			artifacts = db.ArtifactRepo()
		}
		if cs, err = cache.Open(ctx, cfg.Cache, artifacts); err != nil {
			return err
		}
		if cs != nil {
			e.closers = append(e.closers, cs.Close)
		}
	}
	e.memo = cache.NewMemo(cs, cfg.Cache.TTL, e.logger)

	e.logger.Debug("engine ready",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("cache_backend", cfg.Cache.Backend),
	)
	return nil
}

// dbPath resolves the database location, creating its directory.
func dbPath(configured string) (string, error) {
	if configured == "" {
		return store.DefaultDBPath()
	}
	return configured, store.EnsureDir(configured)
}

// Close releases everything Open created, newest first.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Generative reports whether an LLM provider is configured.
func (e *Engine) Generative() bool {
	return e.provider != nil
}

// Config returns the configuration the engine was opened with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

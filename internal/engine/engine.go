// Package engine assembles the assessment components: storage, cache
// tiers, question source, acquisition pipeline, scorer, and telemetry,
// all constructor-injected so nothing holds global state.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skillprep/assess/internal/acquire"
	"github.com/skillprep/assess/internal/assessment"
	"github.com/skillprep/assess/internal/cache"
	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/config"
	"github.com/skillprep/assess/internal/llm"
	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/metrics"
	"github.com/skillprep/assess/internal/score"
	"github.com/skillprep/assess/internal/source"
	"github.com/skillprep/assess/internal/store"
	"github.com/skillprep/assess/internal/telemetry"
)

// snapshotsKept bounds the per-candidate session snapshot history.
const snapshotsKept = 5

// Engine owns the long-lived components shared across sessions.
type Engine struct {
	cfg      config.Config
	log      logger.Logger
	store    *store.Store
	redis    *cache.RedisStore
	pipeline *acquire.Pipeline
	scorer   *score.Engine
	reporter score.Reporter
	sink     telemetry.Sink
}

// New builds the engine from configuration. reg may be nil to skip
// metrics registration.
func New(ctx context.Context, cfg config.Config, log logger.Logger, reg prometheus.Registerer) (*Engine, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}
	if err := store.EnsureDir(dbPath); err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		log:    log,
		store:  st,
		scorer: score.NewEngine(log),
		sink:   telemetry.NewStoreSink(st, log),
	}

	fast, err := e.buildFastTier(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	src, err := e.buildSource(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	opts := acquire.DefaultOptions()
	opts.TargetCount = cfg.Acquire.Count
	opts.FetchTimeout = cfg.Source.Timeout
	opts.MemoryTTL = cfg.Cache.TTL
	opts.DurableTTL = cfg.Cache.DurableTTL
	opts.Retry.MaxAttempts = cfg.Acquire.Attempts
	opts.Retry.BaseDelay = cfg.Acquire.Backoff
	e.pipeline = acquire.New(src, fast, st.DurableCache(log), opts, log, e.sink, m)

	if cfg.Report.URL != "" {
		e.reporter = score.NewRemoteReporter(cfg.Report.URL, cfg.Source.Timeout, log)
	} else {
		e.reporter = score.LocalReporter{}
	}

	return e, nil
}

func (e *Engine) buildFastTier(ctx context.Context) (cache.Store, error) {
	if e.cfg.Cache.Backend != config.CacheRedis {
		return cache.NewMemoryStore(), nil
	}
	rs, err := cache.NewRedisStore(ctx, e.cfg.Cache.Redis, "", 0, e.log)
	if err != nil {
		return nil, fmt.Errorf("connecting redis cache: %w", err)
	}
	e.redis = rs
	return rs, nil
}

func (e *Engine) buildSource(ctx context.Context) (source.QuestionSource, error) {
	switch e.cfg.Source.Kind {
	case config.SourceHTTP:
		return source.NewHTTPSource(e.cfg.Source.URL, e.cfg.Source.Timeout), nil
	case config.SourceMock:
		lcfg := llm.DefaultConfig()
		lcfg.Provider = "mock"
		p, err := llm.NewProvider(ctx, lcfg, e.sink)
		if err != nil {
			return nil, err
		}
		return source.NewLLMSource(p), nil
	default:
		lcfg := llm.ConfigFromEnv()
		if lcfg.Provider == "" {
			discovered, ok := llm.DiscoverConfig()
			if !ok {
				return nil, fmt.Errorf("no LLM provider configured; set ASSESS_LLM_PROVIDER or a provider API key")
			}
			lcfg = discovered
		}
		if err := lcfg.Validate(); err != nil {
			return nil, err
		}
		p, err := llm.NewProvider(ctx, lcfg, e.sink)
		if err != nil {
			return nil, fmt.Errorf("building LLM provider: %w", err)
		}
		return source.NewLLMSource(p), nil
	}
}

// NewSession creates and initializes a state machine for the
// candidate, resuming a fresh-enough saved session if one exists.
func (e *Engine) NewSession(ctx context.Context, profile candidate.Profile) (*assessment.Machine, error) {
	opts := assessment.DefaultOptions()
	opts.SnapshotFreshness = e.cfg.Assessment.Freshness
	opts.AutosaveInterval = e.cfg.Assessment.Autosave

	m := assessment.New(profile, e.pipeline, &snapshotAdapter{repo: e.store.SnapshotRepo()}, e.scorer, e.log, e.sink, opts)
	if err := m.Initialize(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Pipeline exposes the acquisition pipeline for diagnostics.
func (e *Engine) Pipeline() *acquire.Pipeline {
	return e.pipeline
}

// Store exposes the backing store for maintenance commands.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Reporter returns the configured report generator.
func (e *Engine) Reporter() score.Reporter {
	return e.reporter
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if e.redis != nil {
		e.redis.Close()
	}
	return e.store.Close()
}

// snapshotAdapter narrows store.SnapshotRepo to the machine's view:
// session blobs with freshness metadata plus a report slot.
type snapshotAdapter struct {
	repo store.SnapshotRepo
}

func (a *snapshotAdapter) SaveSession(ctx context.Context, candidateID, data string) error {
	if err := a.repo.Save(ctx, candidateID, store.KindSession, data); err != nil {
		return err
	}
	return a.repo.Prune(ctx, candidateID, store.KindSession, snapshotsKept)
}

func (a *snapshotAdapter) LatestSession(ctx context.Context, candidateID string) (string, time.Time, error) {
	snap, err := a.repo.Latest(ctx, candidateID, store.KindSession)
	if err != nil {
		return "", time.Time{}, err
	}
	if snap == nil {
		return "", time.Time{}, nil
	}
	return snap.Data, snap.TakenAt, nil
}

func (a *snapshotAdapter) SaveReport(ctx context.Context, candidateID, data string) error {
	return a.repo.Save(ctx, candidateID, store.KindReport, data)
}

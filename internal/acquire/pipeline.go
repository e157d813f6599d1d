// Package acquire implements the question acquisition pipeline:
// cache lookup, remote fetch with retry, validation and repair, and
// emergency fallback composition. Acquire never fails: every failure
// path degrades to locally generated content so the candidate is never
// blocked.
package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skillprep/assess/internal/cache"
	"github.com/skillprep/assess/internal/candidate"
	"github.com/skillprep/assess/internal/logger"
	"github.com/skillprep/assess/internal/metrics"
	"github.com/skillprep/assess/internal/question"
	"github.com/skillprep/assess/internal/retry"
	"github.com/skillprep/assess/internal/source"
	"github.com/skillprep/assess/internal/telemetry"
)

// Provenance tags where a question set came from.
type Provenance string

const (
	SourceMemory    Provenance = "memory"    // in-process cache tier
	SourceFile      Provenance = "file"      // durable cache tier
	SourceEmergency Provenance = "emergency" // offline fallback generation
	SourceNone      Provenance = "none"      // live remote generation
)

// Request identifies the section a question set is acquired for.
type Request struct {
	SectionID   string
	SectionType question.SectionType
	Category    string
	SessionID   string
	Profile     candidate.Profile
}

// Result is a guaranteed well-formed, fixed-size question set.
type Result struct {
	Questions  []question.Question
	Provenance Provenance
}

// Options configures a Pipeline.
type Options struct {
	// TargetCount is the exact number of questions per set.
	TargetCount int

	// FetchTimeout bounds one remote attempt.
	FetchTimeout time.Duration

	// MemoryTTL and DurableTTL are the cache tier freshness windows.
	MemoryTTL  time.Duration
	DurableTTL time.Duration

	// Retry is the fetch retry policy. Its Retryable classifier is
	// forced to the source package's classification.
	Retry retry.Policy
}

// DefaultOptions returns the standard pipeline settings: 10 questions,
// 30s fetch timeout, 5 minute memory TTL, 24 hour durable TTL.
func DefaultOptions() Options {
	return Options{
		TargetCount:  10,
		FetchTimeout: 30 * time.Second,
		MemoryTTL:    5 * time.Minute,
		DurableTTL:   24 * time.Hour,
		Retry:        retry.DefaultPolicy(),
	}
}

// Pipeline acquires question sets. Safe for concurrent use.
type Pipeline struct {
	src     source.QuestionSource
	memory  cache.Store
	durable cache.Store
	opts    Options
	log     logger.Logger
	sink    telemetry.Sink
	metrics *metrics.Metrics
}

// New creates a Pipeline. Either cache tier may be nil to disable it;
// sink may be nil.
func New(src source.QuestionSource, memory, durable cache.Store, opts Options, log logger.Logger, sink telemetry.Sink, m *metrics.Metrics) *Pipeline {
	if memory == nil {
		memory = cache.Nop{}
	}
	if durable == nil {
		durable = cache.Nop{}
	}
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if opts.TargetCount <= 0 {
		opts.TargetCount = DefaultOptions().TargetCount
	}
	opts.Retry.Retryable = source.Retryable

	return &Pipeline{
		src:     src,
		memory:  memory,
		durable: durable,
		opts:    opts,
		log:     log.Named("acquire"),
		sink:    sink,
		metrics: m,
	}
}

// TargetCount returns the fixed set size the pipeline guarantees.
func (p *Pipeline) TargetCount() int {
	return p.opts.TargetCount
}

// cachedSet is the serialized cache entry format.
type cachedSet struct {
	Questions []question.Question `json:"questions"`
	StoredAt  time.Time           `json:"storedAt"`
}

// Acquire returns exactly TargetCount validated questions for the
// section. It never returns an error: remote failures, validation
// shortfalls, and cache corruption all degrade to emergency content,
// with the provenance tag reporting the degradation.
func (p *Pipeline) Acquire(ctx context.Context, req Request) Result {
	key := p.cacheKey(req)

	// Cache tiers first: memory, then durable.
	if qs, ok := p.fromCache(ctx, p.memory, key); ok {
		p.metrics.CacheHit("memory")
		return p.finish(ctx, req, qs, SourceMemory)
	}
	if qs, ok := p.fromCache(ctx, p.durable, key); ok {
		p.metrics.CacheHit("file")
		// Backfill the faster tier.
		p.writeCache(ctx, p.memory, key, qs, p.opts.MemoryTTL)
		return p.finish(ctx, req, qs, SourceFile)
	}

	validated, remoteOK := p.fetchValidated(ctx, req)

	// Top up with emergency content, or truncate, to exactly N.
	// Earlier-validated questions keep their position.
	n := p.opts.TargetCount
	shortfall := n - len(validated)
	if shortfall > 0 {
		validated = append(validated, question.GenerateEmergency(req.SectionType, shortfall, req.Category)...)
		p.metrics.EmergencyTopUp(shortfall)
	} else if shortfall < 0 {
		validated = validated[:n]
	}

	// A set counts as emergency only when nothing usable came back
	// from the remote; a partial top-up remains a live set.
	provenance := SourceNone
	if !remoteOK {
		provenance = SourceEmergency
	}

	p.writeCache(ctx, p.memory, key, validated, p.opts.MemoryTTL)
	p.writeCache(ctx, p.durable, key, validated, p.opts.DurableTTL)

	return p.finish(ctx, req, validated, provenance)
}

// Invalidate drops the cached set for the request so the next Acquire
// fetches fresh content.
func (p *Pipeline) Invalidate(ctx context.Context, req Request) {
	key := p.cacheKey(req)
	p.memory.Invalidate(ctx, key)
	p.durable.Invalidate(ctx, key)
}

// fetchValidated runs the remote fetch under timeout and retry, then
// validates and repairs every returned item. The bool reports whether
// the remote call produced at least one usable question.
func (p *Pipeline) fetchValidated(ctx context.Context, req Request) ([]question.Question, bool) {
	start := time.Now()

	res, err := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) (*source.Result, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
		return p.src.Fetch(attemptCtx, source.Request{
			SectionID:   req.SectionID,
			SectionType: req.SectionType,
			Category:    req.Category,
			Count:       p.opts.TargetCount,
			Profile:     req.Profile,
		})
	})
	p.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		p.log.Warn(ctx, "remote fetch exhausted, falling back",
			logger.String("section", req.SectionID),
			logger.Int("attempts", p.opts.Retry.MaxAttempts),
			logger.String("errorClass", fmt.Sprintf("%T", err)),
			logger.Error(err))
		return nil, false
	}

	var validated []question.Question
	seen := make(map[string]bool)
	for _, q := range res.Questions {
		v := question.Validate(q, req.SectionType)
		if !v.Accepted {
			p.metrics.ValidatorReject(v.Reason)
			p.log.Debug(ctx, "question rejected",
				logger.String("section", req.SectionID),
				logger.String("rule", v.Reason))
			continue
		}
		if req.Category != "" && v.Repaired.Category != req.Category {
			p.metrics.ValidatorReject("category-mismatch")
			continue
		}
		if seen[v.Repaired.ID] {
			continue
		}
		seen[v.Repaired.ID] = true
		validated = append(validated, v.Repaired)
	}

	return validated, len(validated) > 0
}

func (p *Pipeline) fromCache(ctx context.Context, tier cache.Store, key string) ([]question.Question, bool) {
	raw, ok := tier.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var entry cachedSet
	if err := json.Unmarshal(raw, &entry); err != nil || len(entry.Questions) != p.opts.TargetCount {
		// Malformed entries are discarded and treated as a miss.
		tier.Invalidate(ctx, key)
		return nil, false
	}
	return entry.Questions, true
}

func (p *Pipeline) writeCache(ctx context.Context, tier cache.Store, key string, qs []question.Question, ttl time.Duration) {
	raw, err := json.Marshal(cachedSet{Questions: qs, StoredAt: time.Now()})
	if err != nil {
		return
	}
	tier.Set(ctx, key, raw, ttl)
}

func (p *Pipeline) finish(ctx context.Context, req Request, qs []question.Question, provenance Provenance) Result {
	p.metrics.AcquisitionDone(string(provenance))
	p.sink.Emit(ctx, telemetry.Event{
		Name:      telemetry.EventAcquisition,
		SessionID: req.SessionID,
		Data: map[string]any{
			"section":    req.SectionID,
			"provenance": string(provenance),
			"count":      len(qs),
		},
	})
	return Result{Questions: qs, Provenance: provenance}
}

// cacheKey scopes cached sets by section type, category, and candidate.
func (p *Pipeline) cacheKey(req Request) string {
	cat := req.Category
	if cat == "" {
		cat = "all"
	}
	return fmt.Sprintf("qset:%s:%s:%s", req.SectionType, cat, req.Profile.ID)
}

package trend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/skilltrends/internal/store"
	"github.com/elonfeng/skilltrends/pkg/provider"
	"github.com/elonfeng/skilltrends/pkg/skill"
)

// ErrNoData is returned when the provider answered but nothing usable came back.
var ErrNoData = errors.New("no trend data returned")

// Options configures an Engine.
type Options struct {
	Keywords  []string
	Timeframe string
	TopN      int
	MaxAge    time.Duration
	Fallback  []skill.Skill
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Engine turns provider series into a ranked skill snapshot and falls back
// to the cache or built-in defaults when that fails.
type Engine struct {
	provider provider.Provider // nil = unavailable
	store    store.Store       // nil = no cache
	opts     Options
	log      zerolog.Logger
}

// NewEngine creates a new trend engine.
func NewEngine(p provider.Provider, s store.Store, opts Options) *Engine {
	if opts.Timeframe == "" {
		opts.Timeframe = "today 3-m"
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		provider: p,
		store:    s,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Fetch queries the provider, normalizes and ranks the result, and saves it
// to the store. A failed save is logged and does not fail the fetch.
func (e *Engine) Fetch(ctx context.Context) (*skill.Snapshot, error) {
	if e.provider == nil {
		return nil, provider.ErrUnavailable
	}

	series, err := e.provider.InterestOverTime(ctx, e.opts.Keywords, e.opts.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("fetch interest over time: %w", err)
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}

	var scores []Score
	for _, kw := range e.opts.Keywords {
		s, ok := series[kw]
		if !ok || len(s) == 0 {
			continue
		}
		scores = append(scores, Score{Name: ShortName(kw), Raw: Mean(s)})
	}
	if len(scores) == 0 {
		return nil, ErrNoData
	}

	snap := &skill.Snapshot{
		Skills:      Rank(Normalize(scores), e.opts.TopN),
		LastUpdated: skill.NewTimestamp(e.opts.Now()),
		Source:      e.provider.Name(),
	}

	if e.store != nil {
		if err := e.store.Save(ctx, snap); err != nil {
			e.log.Warn().Err(err).Msg("cache write failed")
		}
	}

	e.log.Info().
		Str("source", snap.Source).
		Int("skills", len(snap.Skills)).
		Msg("fetched skill trends")
	return snap, nil
}

// Cached returns the stored snapshot if it is fresh and non-empty.
func (e *Engine) Cached(ctx context.Context) (*skill.Snapshot, error) {
	if e.store == nil {
		return nil, store.ErrNotFound
	}

	snap, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.Skills) == 0 {
		return nil, fmt.Errorf("cached snapshot has no skills")
	}
	if !snap.FreshAt(e.opts.Now(), e.opts.MaxAge) {
		return nil, fmt.Errorf("cached snapshot from %s is older than %s",
			snap.LastUpdated.Format(time.RFC3339), e.opts.MaxAge)
	}
	return snap, nil
}

// Fallback returns the built-in default snapshot.
func (e *Engine) Fallback() *skill.Snapshot {
	return &skill.Snapshot{
		Skills:      append([]skill.Skill(nil), e.opts.Fallback...),
		LastUpdated: skill.NewTimestamp(e.opts.Now()),
		Source:      skill.SourceFallback,
	}
}

// Resolve always produces a snapshot: fresh data, else a fresh cache entry,
// else the fallback.
func (e *Engine) Resolve(ctx context.Context) *skill.Snapshot {
	snap, err := e.Fetch(ctx)
	if err == nil {
		return snap
	}
	e.log.Warn().Err(err).Msg("trend fetch failed, trying cache")

	cached, err := e.Cached(ctx)
	if err == nil {
		e.log.Info().Str("source", cached.Source).Msg("serving cached skill trends")
		return cached
	}
	if !errors.Is(err, store.ErrNotFound) {
		e.log.Warn().Err(err).Msg("cache unusable")
	}

	e.log.Info().Msg("serving fallback skill trends")
	return e.Fallback()
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/elonfeng/skilltrends/internal/config"
	"github.com/elonfeng/skilltrends/internal/logger"
	"github.com/elonfeng/skilltrends/internal/store"
	"github.com/elonfeng/skilltrends/pkg/provider"
	"github.com/elonfeng/skilltrends/pkg/skill"
	"github.com/elonfeng/skilltrends/pkg/trend"
)

// loadConfig always returns a usable config. A config file that cannot be
// read or parsed is reported and the defaults are used instead.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		def, _ := config.Load("")
		return def, err
	}
	return cfg, nil
}

// setup loads config and builds the logger every command shares.
func setup() (*config.Config, zerolog.Logger) {
	cfg, err := loadConfig()
	log := logger.New(cfg.Log)
	if err != nil {
		log.Warn().Err(err).Msg("using default config")
	}
	return cfg, log
}

func buildProvider(cfg *config.Config, log zerolog.Logger) provider.Provider {
	client := provider.NewHTTPClient(provider.HTTPOptions{
		ConnectTimeout: cfg.HTTP.ParseConnectTimeout(),
		ReadTimeout:    cfg.HTTP.ParseReadTimeout(),
		Retries:        cfg.HTTP.Retries,
		Backoff:        cfg.HTTP.ParseBackoff(),
		Logger:         log,
	})
	matcher := provider.NewMatcher(cfg.Keywords, cfg.Terms)

	switch cfg.Provider {
	case skill.SourceGoogleTrends:
		return provider.NewGoogleTrends(client, provider.GoogleTrendsOptions{
			BaseURL:      cfg.Google.BaseURL,
			HostLanguage: cfg.Google.HostLanguage,
			TZOffset:     cfg.Google.TZOffset,
			Geo:          cfg.Google.Geo,
			Category:     cfg.Google.Category,
		}, log)
	case skill.SourceJobFeeds:
		feeds := make([]provider.Feed, len(cfg.Feeds.Feeds))
		for i, f := range cfg.Feeds.Feeds {
			feeds[i] = provider.Feed{Name: f.Name, URL: f.URL}
		}
		return provider.NewJobFeeds(client, feeds, matcher, log)
	case skill.SourceHackerNews:
		return provider.NewHackerNews(client, cfg.HN.BaseURL, cfg.HN.Concurrency, matcher, log)
	case "", "none":
		return nil
	}

	log.Warn().Str("provider", cfg.Provider).Msg("unknown trends provider")
	return nil
}

// buildStore returns nil when the cache cannot be opened; the engine then
// runs without one.
func buildStore(cfg *config.Config, log zerolog.Logger) store.Store {
	db, err := store.Open(cfg.Cache.Backend, cfg.Cache.ResolvePath())
	if err != nil {
		log.Warn().Err(err).Msg("open cache")
		return nil
	}
	return db
}

func buildEngine(cfg *config.Config, p provider.Provider, db store.Store, log zerolog.Logger) *trend.Engine {
	return trend.NewEngine(p, db, trend.Options{
		Keywords:  cfg.Keywords,
		Timeframe: cfg.Timeframe,
		TopN:      cfg.TopN,
		MaxAge:    cfg.Cache.ParseMaxAge(),
		Fallback:  cfg.Fallback,
		Logger:    log,
	})
}

func runTrends(ctx context.Context, w io.Writer) error {
	cfg, log := setup()

	db := buildStore(cfg, log)
	if db != nil {
		defer db.Close()
	}

	engine := buildEngine(cfg, buildProvider(cfg, log), db, log)
	snap := engine.Resolve(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap.Output())
}

func runCacheShow(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, log := setup()

	db, err := store.Open(cfg.Cache.Backend, cfg.Cache.ResolvePath())
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer db.Close()

	snap, err := db.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(stderr, "no cached snapshot")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}

	if !snap.FreshAt(time.Now(), cfg.Cache.ParseMaxAge()) {
		log.Warn().Time("last_updated", snap.LastUpdated.Time).Msg("cached snapshot is stale")
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runCacheClear(ctx context.Context, stderr io.Writer) error {
	cfg, _ := setup()
	path := cfg.Cache.ResolvePath()

	db, err := store.Open(cfg.Cache.Backend, path)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer db.Close()

	if err := db.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintf(stderr, "cleared cache at %s\n", path)
	return nil
}

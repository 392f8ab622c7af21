package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/skilltrends/internal/logger"
	"github.com/elonfeng/skilltrends/pkg/skill"
)

// CacheFileName is the snapshot file written next to the executable.
const CacheFileName = "skill_trends_cache.json"

// Config is the root configuration.
type Config struct {
	Provider  string        `yaml:"provider"`
	Keywords  []string      `yaml:"keywords"`
	Timeframe string        `yaml:"timeframe"`
	TopN      int           `yaml:"top_n"`
	Fallback  []skill.Skill `yaml:"fallback"`
	Terms     TermsConfig   `yaml:"terms"`
	Cache     CacheConfig   `yaml:"cache"`
	HTTP      HTTPConfig    `yaml:"http"`
	Google    GoogleConfig  `yaml:"google_trends"`
	Feeds     FeedsConfig   `yaml:"job_feeds"`
	HN        HNConfig      `yaml:"hackernews"`
	Log       logger.Config `yaml:"log"`
}

// TermsConfig maps a keyword phrase to the terms counted as a mention of it.
type TermsConfig map[string][]string

// CacheConfig configures snapshot persistence.
type CacheConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
	MaxAge  string `yaml:"max_age"`
}

// ParseMaxAge returns the cache validity window as time.Duration.
func (c CacheConfig) ParseMaxAge() time.Duration {
	d, err := time.ParseDuration(c.MaxAge)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// ResolvePath returns the cache location, defaulting to a file beside the
// running executable.
func (c CacheConfig) ResolvePath() string {
	if c.Path != "" {
		return c.Path
	}
	exe, err := os.Executable()
	if err != nil {
		return CacheFileName
	}
	return filepath.Join(filepath.Dir(exe), CacheFileName)
}

// HTTPConfig configures the outbound HTTP client shared by providers.
type HTTPConfig struct {
	ConnectTimeout string `yaml:"connect_timeout"`
	ReadTimeout    string `yaml:"read_timeout"`
	Retries        int    `yaml:"retries"`
	Backoff        string `yaml:"backoff"`
}

// ParseConnectTimeout returns the dial timeout as time.Duration.
func (h HTTPConfig) ParseConnectTimeout() time.Duration {
	return parseDuration(h.ConnectTimeout, 10*time.Second)
}

// ParseReadTimeout returns the response header timeout as time.Duration.
func (h HTTPConfig) ParseReadTimeout() time.Duration {
	return parseDuration(h.ReadTimeout, 25*time.Second)
}

// ParseBackoff returns the minimum retry wait as time.Duration.
func (h HTTPConfig) ParseBackoff() time.Duration {
	return parseDuration(h.Backoff, 100*time.Millisecond)
}

// GoogleConfig for the Google Trends provider.
type GoogleConfig struct {
	BaseURL      string `yaml:"base_url"`
	HostLanguage string `yaml:"host_language"`
	TZOffset     int    `yaml:"tz_offset"`
	Geo          string `yaml:"geo"`
	Category     int    `yaml:"category"`
}

// FeedsConfig for the job feed provider.
type FeedsConfig struct {
	Feeds []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS/Atom feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// HNConfig for the Hacker News mention provider.
type HNConfig struct {
	BaseURL     string `yaml:"base_url"`
	Concurrency int    `yaml:"concurrency"`
}

// Default returns a Config with the built-in keyword list and fallback chart.
func Default() *Config {
	return &Config{
		Provider: skill.SourceGoogleTrends,
		Keywords: []string{
			"Python programming",
			"SQL database",
			"Machine Learning",
			"Cloud Computing",
			"React JavaScript",
		},
		Timeframe: "today 3-m",
		TopN:      5,
		Fallback: []skill.Skill{
			{Name: "Python", Demand: 85},
			{Name: "SQL", Demand: 78},
			{Name: "Machine Learning", Demand: 72},
			{Name: "Cloud Computing", Demand: 65},
			{Name: "React", Demand: 60},
		},
		Terms: TermsConfig{
			"Python programming": {"python"},
			"SQL database":       {"sql", "postgres", "mysql"},
			"Machine Learning":   {"machine learning", "ml engineer", "pytorch", "tensorflow"},
			"Cloud Computing":    {"cloud", "aws", "azure", "gcp"},
			"React JavaScript":   {"react", "reactjs", "react.js"},
		},
		Cache: CacheConfig{
			Backend: "file",
			MaxAge:  "168h",
		},
		HTTP: HTTPConfig{
			ConnectTimeout: "10s",
			ReadTimeout:    "25s",
			Retries:        2,
			Backoff:        "100ms",
		},
		Google: GoogleConfig{
			BaseURL:      "https://trends.google.com/trends",
			HostLanguage: "en-US",
			TZOffset:     360,
		},
		Feeds: FeedsConfig{
			Feeds: []FeedItem{
				{Name: "We Work Remotely", URL: "https://weworkremotely.com/categories/remote-programming-jobs.rss"},
				{Name: "Remotive", URL: "https://remotive.com/remote-jobs/feed/software-dev"},
				{Name: "HN Jobs", URL: "https://hnrss.org/jobs"},
			},
		},
		HN: HNConfig{
			BaseURL:     "https://hn.algolia.com/api/v1",
			Concurrency: 10,
		},
		Log: logger.Config{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SKILLTRENDS_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SKILLTRENDS_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("SKILLTRENDS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SKILLTRENDS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

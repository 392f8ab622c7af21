package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/elonfeng/skilltrends/internal/logger"
)

// ErrUnavailable is returned when no usable provider is configured.
var ErrUnavailable = errors.New("trends provider unavailable")

// Provider fetches interest-over-time series for keyword phrases.
type Provider interface {
	Name() string
	// InterestOverTime returns one series per keyword that had data.
	// Keywords without data are absent from the map.
	InterestOverTime(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error)
}

// Error wraps a failure inside a provider.
type Error struct {
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPOptions tunes the client shared by providers.
type HTTPOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Retries        int
	Backoff        time.Duration
	Logger         zerolog.Logger
}

// NewHTTPClient builds a retrying client with a cookie jar.
func NewHTTPClient(opts HTTPOptions) *retryablehttp.Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 25 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   10,
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Transport: transport, Jar: jar}
	client.RetryMax = opts.Retries
	client.RetryWaitMin = opts.Backoff
	client.RetryWaitMax = opts.Backoff * 10
	client.Logger = logger.Retry{Logger: opts.Logger}
	return client
}

// window is a parsed timeframe relative to now.
type window struct {
	Start time.Time
	End   time.Time
}

// parseTimeframe understands "today N-m", "today N-y", "today N-d",
// "now N-d" and "now N-H".
func parseTimeframe(timeframe string, now time.Time) (window, error) {
	fields := strings.Fields(timeframe)
	if len(fields) != 2 || (fields[0] != "today" && fields[0] != "now") {
		return window{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	amount, unit, ok := strings.Cut(fields[1], "-")
	if !ok {
		return window{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	n, err := strconv.Atoi(amount)
	if err != nil || n <= 0 {
		return window{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	var start time.Time
	switch unit {
	case "H":
		start = now.Add(-time.Duration(n) * time.Hour)
	case "d":
		start = now.AddDate(0, 0, -n)
	case "m":
		start = now.AddDate(0, -n, 0)
	case "y":
		start = now.AddDate(-n, 0, 0)
	default:
		return window{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	return window{Start: start, End: now}, nil
}

// buckets splits the window into week-long intervals, oldest first. The
// last bucket may be shorter.
func (w window) buckets() []window {
	const week = 7 * 24 * time.Hour
	var out []window
	for start := w.Start; start.Before(w.End); start = start.Add(week) {
		end := start.Add(week)
		if end.After(w.End) {
			end = w.End
		}
		out = append(out, window{Start: start, End: end})
	}
	return out
}

// index returns the bucket containing t, or -1.
func (w window) index(t time.Time) int {
	if t.Before(w.Start) || !t.Before(w.End) {
		return -1
	}
	return int(t.Sub(w.Start) / (7 * 24 * time.Hour))
}

// scaleToPeak rescales counts so the largest value across every series is
// 100, the way search-interest indices are reported. All-zero input is
// returned unchanged.
func scaleToPeak(counts map[string][]float64) map[string][]float64 {
	peak := 0.0
	for _, series := range counts {
		for _, v := range series {
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 {
		return counts
	}

	scaled := make(map[string][]float64, len(counts))
	for kw, series := range counts {
		out := make([]float64, len(series))
		for i, v := range series {
			out[i] = math.Round(v / peak * 100)
		}
		scaled[kw] = out
	}
	return scaled
}

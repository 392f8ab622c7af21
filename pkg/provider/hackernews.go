package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

const hnSearchBaseURL = "https://hn.algolia.com/api/v1"

// HackerNews estimates interest from weekly story counts on Hacker News.
type HackerNews struct {
	client      *retryablehttp.Client
	baseURL     string
	concurrency int
	matcher     *Matcher
	log         zerolog.Logger
	now         func() time.Time
}

// NewHackerNews creates a new HN mention provider.
func NewHackerNews(client *retryablehttp.Client, baseURL string, concurrency int, matcher *Matcher, log zerolog.Logger) *HackerNews {
	if baseURL == "" {
		baseURL = hnSearchBaseURL
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	return &HackerNews{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: concurrency,
		matcher:     matcher,
		log:         log,
		now:         time.Now,
	}
}

func (h *HackerNews) Name() string { return skill.SourceHackerNews }

func (h *HackerNews) InterestOverTime(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error) {
	win, err := parseTimeframe(timeframe, h.now())
	if err != nil {
		return nil, &Error{Provider: h.Name(), Op: "parse timeframe", Err: err}
	}
	buckets := win.buckets()

	var mu sync.Mutex
	counts := make(map[string][]float64, len(keywords))
	for _, kw := range keywords {
		counts[kw] = make([]float64, len(buckets))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for _, kw := range keywords {
		terms := h.matcher.Terms(kw)
		if len(terms) == 0 {
			continue
		}
		query := terms[0]
		for i, b := range buckets {
			g.Go(func() error {
				n, err := h.countStories(gctx, query, b)
				if err != nil {
					return err
				}
				mu.Lock()
				counts[kw][i] = float64(n)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, &Error{Provider: h.Name(), Op: "search", Err: err}
	}

	total := 0.0
	for _, series := range counts {
		for _, v := range series {
			total += v
		}
	}
	if total == 0 {
		return map[string][]float64{}, nil
	}
	return scaleToPeak(counts), nil
}

func (h *HackerNews) countStories(ctx context.Context, query string, b window) (int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	params.Set("hitsPerPage", "0")
	params.Set("numericFilters", fmt.Sprintf("created_at_i>=%d,created_at_i<%d", b.Start.Unix(), b.End.Unix()))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create hn search request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("search hn %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("search hn %q: status %d", query, resp.StatusCode)
	}

	var result struct {
		NbHits int `json:"nbHits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode hn search %q: %w", query, err)
	}
	return result.NbHits, nil
}

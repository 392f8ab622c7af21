package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// JobFeeds estimates interest by counting keyword mentions in job board
// feeds, bucketed by week.
type JobFeeds struct {
	client  *retryablehttp.Client
	parser  *gofeed.Parser
	feeds   []Feed
	matcher *Matcher
	log     zerolog.Logger
	now     func() time.Time
}

// NewJobFeeds creates a new job feed provider.
func NewJobFeeds(client *retryablehttp.Client, feeds []Feed, matcher *Matcher, log zerolog.Logger) *JobFeeds {
	return &JobFeeds{
		client:  client,
		parser:  gofeed.NewParser(),
		feeds:   feeds,
		matcher: matcher,
		log:     log,
		now:     time.Now,
	}
}

func (j *JobFeeds) Name() string { return skill.SourceJobFeeds }

func (j *JobFeeds) InterestOverTime(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error) {
	win, err := parseTimeframe(timeframe, j.now())
	if err != nil {
		return nil, &Error{Provider: j.Name(), Op: "parse timeframe", Err: err}
	}
	if len(j.feeds) == 0 {
		return nil, &Error{Provider: j.Name(), Op: "collect", Err: errors.New("no feeds configured")}
	}

	buckets := len(win.buckets())
	counts := make(map[string][]float64, len(keywords))
	for _, kw := range keywords {
		counts[kw] = make([]float64, buckets)
	}

	var (
		errs    []error
		entries int
	)
	for _, feed := range j.feeds {
		items, err := j.collectFeed(ctx, feed)
		if err != nil {
			j.log.Warn().Err(err).Str("feed", feed.Name).Msg("job feed failed")
			errs = append(errs, err)
			continue
		}

		for _, item := range items {
			idx := win.index(published(item, win.End.Add(-time.Nanosecond)))
			if idx < 0 {
				continue
			}
			entries++
			tokens := tokenize(item.Title + " " + item.Description)
			for _, kw := range keywords {
				if j.matcher.matchTokens(kw, tokens) {
					counts[kw][idx]++
				}
			}
		}
	}

	if len(errs) == len(j.feeds) {
		return nil, &Error{Provider: j.Name(), Op: "collect", Err: errors.Join(errs...)}
	}
	if entries == 0 {
		return map[string][]float64{}, nil
	}
	j.log.Debug().Int("entries", entries).Msg("job feeds collected")
	return scaleToPeak(counts), nil
}

func (j *JobFeeds) collectFeed(ctx context.Context, feed Feed) ([]*gofeed.Item, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "skilltrends/1.0")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := j.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}
	return parsed.Items, nil
}

// published returns the item's publication time, falling back to its update
// time and then to fallback. Undated items count toward the latest week.
func published(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return fallback
}

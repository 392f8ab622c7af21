package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

const googleTrendsBaseURL = "https://trends.google.com/trends"

// GoogleTrendsOptions configures the Google Trends provider.
type GoogleTrendsOptions struct {
	BaseURL      string
	HostLanguage string
	TZOffset     int
	Geo          string
	Category     int
}

// GoogleTrends reads interest over time from the Google Trends web API.
type GoogleTrends struct {
	client *retryablehttp.Client
	opts   GoogleTrendsOptions
	log    zerolog.Logger
}

// NewGoogleTrends creates a new Google Trends provider.
func NewGoogleTrends(client *retryablehttp.Client, opts GoogleTrendsOptions, log zerolog.Logger) *GoogleTrends {
	if opts.BaseURL == "" {
		opts.BaseURL = googleTrendsBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.HostLanguage == "" {
		opts.HostLanguage = "en-US"
	}
	return &GoogleTrends{client: client, opts: opts, log: log}
}

func (g *GoogleTrends) Name() string { return skill.SourceGoogleTrends }

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type exploreWidget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string `json:"time"`
			Value []int  `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

func (g *GoogleTrends) InterestOverTime(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error) {
	if len(keywords) == 0 {
		return map[string][]float64{}, nil
	}

	g.primeCookies(ctx)

	widget, err := g.explore(ctx, keywords, timeframe)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Op: "explore", Err: err}
	}

	series, err := g.multiline(ctx, widget, keywords)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Op: "interest over time", Err: err}
	}
	return series, nil
}

// primeCookies visits the explore page so the jar holds a session cookie.
// Failure is not fatal; the API often answers without it.
func (g *GoogleTrends) primeCookies(ctx context.Context) {
	geo := g.opts.HostLanguage
	if i := strings.LastIndex(geo, "-"); i >= 0 {
		geo = geo[i+1:]
	}
	u := g.opts.BaseURL + "/explore/?geo=" + url.QueryEscape(geo)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug().Err(err).Msg("google trends cookie request failed")
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (g *GoogleTrends) explore(ctx context.Context, keywords []string, timeframe string) (*exploreWidget, error) {
	payload := exploreRequest{Category: g.opts.Category}
	for _, kw := range keywords {
		payload.ComparisonItem = append(payload.ComparisonItem, comparisonItem{
			Keyword: kw,
			Time:    timeframe,
			Geo:     g.opts.Geo,
		})
	}
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode explore request: %w", err)
	}

	params := g.baseParams()
	params.Set("req", string(reqJSON))

	body, err := g.call(ctx, http.MethodPost, g.opts.BaseURL+"/api/explore?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Widgets []exploreWidget `json:"widgets"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode explore response: %w", err)
	}
	for i := range resp.Widgets {
		if resp.Widgets[i].ID == "TIMESERIES" {
			return &resp.Widgets[i], nil
		}
	}
	return nil, errors.New("no TIMESERIES widget in explore response")
}

func (g *GoogleTrends) multiline(ctx context.Context, widget *exploreWidget, keywords []string) (map[string][]float64, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, widget.Request); err != nil {
		return nil, fmt.Errorf("compact widget request: %w", err)
	}

	params := g.baseParams()
	params.Set("req", compact.String())
	params.Set("token", widget.Token)

	body, err := g.call(ctx, http.MethodGet, g.opts.BaseURL+"/api/widgetdata/multiline?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp multilineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode multiline response: %w", err)
	}

	series := make(map[string][]float64)
	for _, point := range resp.Default.TimelineData {
		for i, v := range point.Value {
			if i >= len(keywords) {
				break
			}
			series[keywords[i]] = append(series[keywords[i]], float64(v))
		}
	}
	return series, nil
}

func (g *GoogleTrends) baseParams() url.Values {
	params := url.Values{}
	params.Set("hl", g.opts.HostLanguage)
	params.Set("tz", strconv.Itoa(g.opts.TZOffset))
	return params
}

// call performs the request and returns the body with the anti-JSON-hijacking
// prefix removed.
func (g *GoogleTrends) call(ctx context.Context, method, u string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, errors.New("response contains no JSON object")
	}
	return body[start:], nil
}

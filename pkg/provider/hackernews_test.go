package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHackerNewsInterestOverTime(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	newest := now.AddDate(0, 0, -7).Unix()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if q.Get("tags") != "story" || q.Get("hitsPerPage") != "0" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		// created_at_i>=START,created_at_i<END
		filters := strings.Split(q.Get("numericFilters"), ",")
		start, _ := strconv.ParseInt(strings.TrimPrefix(filters[0], "created_at_i>="), 10, 64)

		hits := 0
		switch q.Get("query") {
		case "python":
			hits = 40
			if start == newest {
				hits = 80
			}
		case "rust":
			hits = 20
		}
		fmt.Fprintf(w, `{"hits":[],"nbHits":%d}`, hits)
	}))
	defer srv.Close()

	matcher := NewMatcher([]string{"Python programming", "Rust language"}, map[string][]string{
		"Python programming": {"python"},
		"Rust language":      {"rust"},
	})
	h := NewHackerNews(NewHTTPClient(testClient()), srv.URL, 3, matcher, zerolog.Nop())
	h.now = func() time.Time { return now }

	series, err := h.InterestOverTime(context.Background(), []string{"Python programming", "Rust language"}, "now 14-d")
	if err != nil {
		t.Fatalf("interest over time: %v", err)
	}

	if got := calls.Load(); got != 4 {
		t.Errorf("expected 4 searches (2 keywords x 2 weeks), got %d", got)
	}
	py := series["Python programming"]
	if len(py) != 2 || py[0] != 50 || py[1] != 100 {
		t.Errorf("unexpected python series %v", py)
	}
	rust := series["Rust language"]
	if len(rust) != 2 || rust[0] != 25 || rust[1] != 25 {
		t.Errorf("unexpected rust series %v", rust)
	}
}

func TestHackerNewsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	h := NewHackerNews(NewHTTPClient(testClient()), srv.URL, 0, nil, zerolog.Nop())
	if _, err := h.InterestOverTime(context.Background(), []string{"Go"}, "now 7-d"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHackerNewsNoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"nbHits":0}`)
	}))
	defer srv.Close()

	h := NewHackerNews(NewHTTPClient(testClient()), srv.URL, 0, nil, zerolog.Nop())
	series, err := h.InterestOverTime(context.Background(), []string{"Go"}, "now 7-d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected no data, got %v", series)
	}
}

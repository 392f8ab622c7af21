package provider

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeframe(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		"today 3-m":  time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC),
		"today 12-m": time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC),
		"today 5-y":  time.Date(2021, 10, 15, 12, 0, 0, 0, time.UTC),
		"now 7-d":    time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC),
		"now 4-H":    time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}
	for tf, wantStart := range cases {
		w, err := parseTimeframe(tf, now)
		if err != nil {
			t.Errorf("%s: %v", tf, err)
			continue
		}
		if !w.Start.Equal(wantStart) || !w.End.Equal(now) {
			t.Errorf("%s: got %v..%v", tf, w.Start, w.End)
		}
	}

	for _, bad := range []string{"", "all", "today", "today 3m", "today x-m", "today 0-m", "today 3-w", "2024-01-01 2024-02-01"} {
		if _, err := parseTimeframe(bad, now); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWindowBuckets(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := window{Start: start, End: start.AddDate(0, 0, 17)}

	buckets := w.buckets()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if !buckets[2].End.Equal(w.End) {
		t.Errorf("last bucket should be clipped to the window end")
	}

	if got := w.index(start); got != 0 {
		t.Errorf("index(start) = %d", got)
	}
	if got := w.index(start.AddDate(0, 0, 16)); got != 2 {
		t.Errorf("index(day 16) = %d", got)
	}
	if got := w.index(w.End); got != -1 {
		t.Errorf("end is exclusive, got %d", got)
	}
	if got := w.index(start.Add(-time.Second)); got != -1 {
		t.Errorf("before start should be -1, got %d", got)
	}
}

func TestScaleToPeak(t *testing.T) {
	scaled := scaleToPeak(map[string][]float64{
		"a": {1, 2, 4},
		"b": {3, 0, 0},
	})
	if got := scaled["a"]; got[0] != 25 || got[1] != 50 || got[2] != 100 {
		t.Errorf("unexpected a %v", got)
	}
	if got := scaled["b"]; got[0] != 75 {
		t.Errorf("unexpected b %v", got)
	}

	zeros := map[string][]float64{"a": {0, 0}}
	if got := scaleToPeak(zeros); got["a"][0] != 0 {
		t.Errorf("all-zero input should pass through, got %v", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Provider: "x", Op: "fetch", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Error should unwrap to its cause")
	}
	if err.Error() != "x: fetch: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"Machine Learning", "React JavaScript", "C++ systems"}, map[string][]string{
		"React JavaScript": {"react", "react.js"},
		"C++ systems":      {"c++"},
	})

	cases := []struct {
		keyword, text string
		want          bool
	}{
		{"Machine Learning", "Senior Machine-Learning Engineer", true},
		{"Machine Learning", "machine operator, learning on the job", false},
		{"React JavaScript", "Frontend (React.js)", true},
		{"React JavaScript", "Reactive systems engineer", false},
		{"C++ systems", "Low latency C++ developer", true},
		{"Unknown phrase", "an unknown phrase appears", true},
	}
	for _, c := range cases {
		if got := m.Matches(c.keyword, c.text); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", c.keyword, c.text, got, c.want)
		}
	}

	if terms := m.Terms("React JavaScript"); len(terms) != 2 || terms[0] != "react" || terms[1] != "react js" {
		t.Errorf("unexpected terms %v", terms)
	}

	var nilMatcher *Matcher
	if !nilMatcher.Matches("Go", "Go developer") {
		t.Error("nil matcher should fall back to the keyword phrase")
	}
}

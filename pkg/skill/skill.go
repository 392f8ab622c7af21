package skill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Source names the origin of a snapshot.
const (
	SourceGoogleTrends = "google_trends"
	SourceJobFeeds     = "job_feeds"
	SourceHackerNews   = "hackernews"
	SourceFallback     = "fallback"
)

// Skill is one entry of the chart payload.
type Skill struct {
	Name   string `json:"name"`
	Demand int    `json:"demand"`
}

// Snapshot is the cached record, including metadata the frontend never sees.
type Snapshot struct {
	Skills      []Skill   `json:"skills"`
	LastUpdated Timestamp `json:"last_updated"`
	Source      string    `json:"source"`
}

// Output is the payload printed for the charting frontend.
type Output struct {
	Skills []Skill `json:"skills"`
}

// Output strips the snapshot metadata.
func (s *Snapshot) Output() Output {
	skills := s.Skills
	if skills == nil {
		skills = []Skill{}
	}
	return Output{Skills: skills}
}

// FreshAt reports whether the snapshot is younger than maxAge at now.
func (s *Snapshot) FreshAt(now time.Time, maxAge time.Duration) bool {
	if s.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(s.LastUpdated.Time) < maxAge
}

// naiveLayout is ISO-8601 without a zone offset, as written by tools that
// keep local wall-clock time.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that also accepts zone-less ISO-8601 values.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimestamp parses RFC 3339 or zone-less ISO-8601 (local time).
func ParseTimestamp(s string) (Timestamp, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: ts}, nil
	}
	ts, err := time.ParseInLocation(naiveLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{Time: ts}, nil
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

func sampleSnapshot(source string) *skill.Snapshot {
	return &skill.Snapshot{
		Skills: []skill.Skill{
			{Name: "Python", Demand: 100},
			{Name: "SQL", Demand: 71},
			{Name: "React", Demand: 40},
		},
		LastUpdated: skill.NewTimestamp(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)),
		Source:      source,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	first := sampleSnapshot(skill.SourceGoogleTrends)
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Source != first.Source || len(got.Skills) != 3 || got.Skills[1] != first.Skills[1] {
		t.Errorf("loaded snapshot mismatch: %+v", got)
	}
	if !got.LastUpdated.Equal(first.LastUpdated.Time) {
		t.Errorf("timestamp mismatch: %v != %v", got.LastUpdated.Time, first.LastUpdated.Time)
	}

	second := &skill.Snapshot{
		Skills:      []skill.Skill{{Name: "Go", Demand: 40}},
		LastUpdated: skill.NewTimestamp(first.LastUpdated.Add(time.Hour)),
		Source:      skill.SourceJobFeeds,
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(got.Skills) != 1 || got.Skills[0].Name != "Go" || got.Source != skill.SourceJobFeeds {
		t.Errorf("save should replace the snapshot wholesale, got %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Errorf("clearing an empty store should succeed: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "skill_trends_cache.json"))
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFile(path).Load(context.Background())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("corrupt file should not be reported as not found")
	}
}

func TestFileStoreFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := NewFile(path).Save(context.Background(), sampleSnapshot(skill.SourceGoogleTrends)); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := `{
  "skills": [
    {
      "name": "Python",
      "demand": 100
    },
    {
      "name": "SQL",
      "demand": 71
    },
    {
      "name": "React",
      "demand": 40
    }
  ],
  "last_updated": "2026-10-15T08:00:00Z",
  "source": "google_trends"
}`
	if string(data) != want {
		t.Errorf("unexpected cache file:\n%s", data)
	}
}

func TestFileStoreWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "cache.json")
	if err := NewFile(path).Save(context.Background(), sampleSnapshot(skill.SourceGoogleTrends)); err == nil {
		t.Error("expected write error for missing directory")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("", filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("expected FileStore for empty backend, got %T", s)
	}

	s, err = Open("sqlite", filepath.Join(dir, "a.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("expected SQLiteStore, got %T", s)
	}

	if _, err := Open("redis", "x"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

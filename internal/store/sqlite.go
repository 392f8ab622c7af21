package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elonfeng/skilltrends/pkg/skill"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type snapshotRow struct {
	ID          int64  `db:"id"`
	SkillsJSON  string `db:"skills"`
	LastUpdated string `db:"last_updated"`
	Source      string `db:"source"`
}

// SQLiteStore keeps the snapshot in a single-row SQLite table.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite opens a SQLite database and creates the snapshot table.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*skill.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM snapshot WHERE id = 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &skill.Snapshot{Source: row.Source}
	if err := json.Unmarshal([]byte(row.SkillsJSON), &snap.Skills); err != nil {
		return nil, fmt.Errorf("decode snapshot skills: %w", err)
	}
	ts, err := skill.ParseTimestamp(row.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot time: %w", err)
	}
	snap.LastUpdated = ts
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *skill.Snapshot) error {
	skillsJSON, err := json.Marshal(snap.Skills)
	if err != nil {
		return fmt.Errorf("encode snapshot skills: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, skills, last_updated, source)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			skills = excluded.skills,
			last_updated = excluded.last_updated,
			source = excluded.source
	`, string(skillsJSON), snap.LastUpdated.Format(time.RFC3339Nano), snap.Source)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshot")
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

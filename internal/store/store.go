package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

// ErrNotFound is returned by Load when no snapshot has been saved.
var ErrNotFound = errors.New("snapshot not found")

// Store persists the single most recent snapshot. Save replaces whatever
// was there before.
type Store interface {
	Load(ctx context.Context) (*skill.Snapshot, error)
	Save(ctx context.Context, snap *skill.Snapshot) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store for backend ("file" or "sqlite") at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFile(path), nil
	case "sqlite":
		return NewSQLite(path)
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}

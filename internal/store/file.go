package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/elonfeng/skilltrends/pkg/skill"
)

// FileStore keeps the snapshot as an indented JSON document.
type FileStore struct {
	path string
}

// NewFile creates a store backed by the JSON file at path.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (*skill.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache %s: %w", f.path, err)
	}

	var snap skill.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", f.path, err)
	}
	return &snap, nil
}

func (f *FileStore) Save(ctx context.Context, snap *skill.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write cache %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

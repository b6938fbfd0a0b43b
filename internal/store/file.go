package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFilePath is where the file backend keeps its snapshot.
const DefaultFilePath = "seen_internships.json"

// FileBackend stores the seen IDs as a JSON array, oldest first.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string { return "file" }

// Load reads the snapshot. A missing file is an empty snapshot.
func (b *FileBackend) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", b.path, err)
	}
	return ids, nil
}

// Save writes the snapshot to a temp file in the same directory and renames
// it over the old one, so readers see either the old or the new snapshot.
func (b *FileBackend) Save(_ context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ids); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	committed = true
	return nil
}

func (b *FileBackend) Close() error { return nil }

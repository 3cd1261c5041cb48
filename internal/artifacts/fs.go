package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opensource-finance/shrike/internal/domain"
)

// FSStore persists artifacts as JSON files in a directory, one file per
// logical key. The default backend for local development and the Community
// tier.
type FSStore struct {
	dir string
}

// NewFSStore creates the directory if needed and returns a filesystem store.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		dir = "./models"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Put writes the artifact to a temporary file and renames it into place, so
// a reader never observes a partially written model.
func (s *FSStore) Put(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil || artifact.Key == "" {
		return fmt.Errorf("%w: artifact key is required", ErrInvalidInput)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact %s: %w", artifact.Key, err)
	}

	tmp, err := os.CreateTemp(s.dir, artifact.Key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact %s: %w", artifact.Key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(artifact.Key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace artifact %s: %w", artifact.Key, err)
	}
	return nil
}

// Get reads an artifact by logical key.
func (s *FSStore) Get(ctx context.Context, key string) (*domain.Artifact, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}

	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", key, err)
	}
	return &artifact, nil
}

// List returns the logical keys present in the directory, sorted.
func (s *FSStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping verifies the directory is accessible.
func (s *FSStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/storage"
)

// Ensure Store satisfies the storage.Mirror interface at compile time.
var _ storage.Mirror = (*Store)(nil)

// Store keeps the mirror as a small JSON document keyed by
// storage.MirrorKey, written atomically with owner-only permissions.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore prepares a mirror file at path, creating its directory.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the mirrored identity.
func (s *Store) Load(_ context.Context) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Identity{}, storage.ErrNotFound
		}
		return models.Identity{}, fmt.Errorf("read mirror: %w", err)
	}
	var doc map[string]models.Identity
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Identity{}, fmt.Errorf("decode mirror: %w", err)
	}
	ident, ok := doc[storage.MirrorKey]
	if !ok {
		return models.Identity{}, storage.ErrNotFound
	}
	return ident, nil
}

// Save overwrites the mirror with ident.
func (s *Store) Save(_ context.Context, ident models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(map[string]models.Identity{storage.MirrorKey: ident}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".mirror-*")
	if err != nil {
		return fmt.Errorf("create temp mirror: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}

// Clear deletes the mirror file. A missing file is not an error.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove mirror: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (s *Store) Close() error {
	return nil
}

package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/hongminglow/jobportal/internal/models"
)

// ErrNotFound indicates no identity has been mirrored.
var ErrNotFound = errors.New("record not found")

// MirrorKey is the fixed key the identity copy is stored under.
const MirrorKey = "job-portal-user"

// Mirror keeps a display copy of the signed-in identity between runs.
// It is never an authority on who is logged in.
type Mirror interface {
	Load(ctx context.Context) (models.Identity, error)
	Save(ctx context.Context, ident models.Identity) error
	Clear(ctx context.Context) error
	Close() error
}

// Ensure Memory satisfies the Mirror interface at compile time.
var _ Mirror = (*Memory)(nil)

// Memory is an in-process Mirror used by tests and as a fallback when the
// state directory is unusable.
type Memory struct {
	mu    sync.Mutex
	ident *models.Identity
}

// NewMemory returns an empty in-memory mirror.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the stored identity.
func (m *Memory) Load(_ context.Context) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ident == nil {
		return models.Identity{}, ErrNotFound
	}
	return *m.ident, nil
}

// Save replaces the stored identity.
func (m *Memory) Save(_ context.Context, ident models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ident = &ident
	return nil
}

// Clear removes the stored identity.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ident = nil
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/storage"
)

// Ensure Store satisfies the storage.Mirror interface at compile time.
var _ storage.Mirror = (*Store)(nil)

// Store provides SQLite-backed persistence for the identity mirror.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and runs migrations.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS mirror (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Load fetches the mirrored identity.
func (s *Store) Load(ctx context.Context) (models.Identity, error) {
	const query = `SELECT value FROM mirror WHERE key = ?;`
	row := s.db.QueryRowContext(ctx, query, storage.MirrorKey)
	return scanIdentity(row)
}

// Save upserts the mirrored identity.
func (s *Store) Save(ctx context.Context, ident models.Identity) error {
	raw, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	const query = `
		INSERT INTO mirror (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`
	if _, err := s.db.ExecContext(ctx, query, storage.MirrorKey, string(raw)); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Clear deletes the mirrored identity.
func (s *Store) Clear(ctx context.Context) error {
	const query = `DELETE FROM mirror WHERE key = ?;`
	if _, err := s.db.ExecContext(ctx, query, storage.MirrorKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func scanIdentity(row *sql.Row) (models.Identity, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, storage.ErrNotFound
		}
		return models.Identity{}, err
	}
	var ident models.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil {
		return models.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return ident, nil
}

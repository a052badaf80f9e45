// Package storagetest holds the behaviour every storage.Mirror must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/storage"
)

// RunMirror exercises a fresh mirror returned by open.
func RunMirror(t *testing.T, open func(t *testing.T) storage.Mirror) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		m := open(t)
		_, err := m.Load(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, m.Clear(ctx), "clearing an empty mirror")
	})

	t.Run("save load clear", func(t *testing.T) {
		m := open(t)
		ident := models.Identity{
			ID:     "u1",
			Name:   "Ada",
			Email:  "ada@example.com",
			Role:   models.JobSeeker,
			Skills: models.StringList{"go", "sql"},
		}
		require.NoError(t, m.Save(ctx, ident))

		got, err := m.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, ident.ID, got.ID)
		assert.Equal(t, ident.Role, got.Role)
		assert.Equal(t, ident.Skills, got.Skills)

		require.NoError(t, m.Clear(ctx))
		_, err = m.Load(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save replaces", func(t *testing.T) {
		m := open(t)
		require.NoError(t, m.Save(ctx, models.Identity{ID: "u1", Role: models.Employer}))
		require.NoError(t, m.Save(ctx, models.Identity{ID: "u1", Name: "Renamed", Role: models.Employer}))

		got, err := m.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})
}

package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/fact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Facts.Store = "memory"
	repo, closeFn, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepo{}, repo)
	require.NoError(t, closeFn())

	cfg.Facts.Store = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "facts.db")
	repo, closeFn, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepo{}, repo)
	require.NoError(t, repo.Create(ctx, &fact.Fact{Category: "space", Content: "Venus spins backwards."}))
	require.NoError(t, closeFn())

	cfg.Facts.Store = "mongo"
	_, _, err = Open(ctx, cfg, nil)
	require.ErrorIs(t, err, ErrNoMongoClient)

	cfg.Facts.Store = "cassandra"
	_, _, err = Open(ctx, cfg, nil)
	require.Error(t, err)
}

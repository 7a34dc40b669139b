package storage_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elecciones/internal/storage"
)

type resetFailingApp struct {
	core.App
	resets int
}

func (a *resetFailingApp) ResetBootstrapState() error {
	a.resets++
	return errors.New("db busy")
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestOpenStore(t *testing.T) {
	app := storage.NewApp(t.TempDir())

	store, closeFn, err := storage.OpenStore(context.Background(), app)
	require.NoError(t, err)
	require.NotNil(t, store)

	parties, err := store.Parties(context.Background())
	require.NoError(t, err)
	assert.Empty(t, parties)

	closeFn()
	assert.False(t, app.IsBootstrapped())
}

func TestOpenStoreMigrateFailureLogsReleaseError(t *testing.T) {
	base := storage.NewApp(t.TempDir())
	require.NoError(t, base.Bootstrap())
	t.Cleanup(func() { base.ResetBootstrapState() })

	// a view cannot carry the parties index, so the schema is rejected
	_, err := base.DB().NewQuery("create view parties as select 1 as name").Execute()
	require.NoError(t, err)

	logs := captureLogs(t)
	app := &resetFailingApp{App: base}

	store, closeFn, err := storage.OpenStore(context.Background(), app)
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Nil(t, closeFn)
	assert.Equal(t, 1, app.resets)
	assert.Contains(t, logs.String(), "failed to close data dir")
	assert.Contains(t, logs.String(), "db busy")
}

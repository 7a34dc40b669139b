package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// NewApp creates the pocketbase app hosting the data directory and the
// command tree. Nothing is opened until OpenStore.
func NewApp(dataDir string) *pocketbase.PocketBase {
	return pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:  dataDir,
		HideStartBanner: true,
	})
}

// OpenStore bootstraps app and returns a migrated store over its main
// database. The returned close func releases the app connections.
func OpenStore(ctx context.Context, app core.App) (*Store, func(), error) {
	if !app.IsBootstrapped() {
		if err := app.Bootstrap(); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap PocketBase: %w", err)
		}
	}
	slog.Debug("opened data dir", "dir", app.DataDir())

	store := New(app.DB())
	if err := store.Migrate(ctx); err != nil {
		release(app)
		return nil, nil, err
	}

	return store, func() { release(app) }, nil
}

func release(app core.App) {
	if err := app.ResetBootstrapState(); err != nil {
		slog.Warn("failed to close data dir", "dir", app.DataDir(), "err", err)
	}
}

package testutil

import (
	"context"
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"elecciones/internal/storage"
)

// SetupStore returns a migrated store over a private in-memory database.
func SetupStore(t testing.TB) *storage.Store {
	t.Helper()

	db, err := dbx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection would get its own empty :memory: database
	db.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := storage.New(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// Exec runs raw statements against the store, for fixtures and triggers.
func Exec(t testing.TB, store *storage.Store, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := store.DB().NewQuery(stmt).Execute()
		require.NoError(t, err, stmt)
	}
}

func Count(t testing.TB, store *storage.Store, table string) int {
	t.Helper()
	var n int
	err := store.DB().Select("COUNT(*)").From(table).Row(&n)
	require.NoError(t, err)
	return n
}

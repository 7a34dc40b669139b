package storage

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("elecciones/internal/storage")

//go:embed schema.sql
var schemaSQL string

const (
	TableParties       = "parties"
	TableCandidates    = "candidates"
	TableVotingCenters = "voting_centers"
	TablePollingTables = "polling_tables"
)

// Store wraps the sqlite database every pipeline writes to
type Store struct {
	db *dbx.DB
}

func New(db *dbx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *dbx.DB {
	return s.db
}

// Migrate creates the tables when they do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.NewQuery(stmt).WithContext(ctx).Execute(); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"elecciones/internal/models"
)

const dateLayout = "2006-01-02"

// LoadReport counts the outcome of one full replace
type LoadReport struct {
	Inserted int
	Skipped  int
}

// Replace swaps the whole content of table for rows in one transaction.
// A row violating a unique constraint is skipped; any other failure rolls
// everything back, the initial delete included, and wraps
// models.ErrStorageFailure.
func (s *Store) Replace(ctx context.Context, table string, rows []dbx.Params) (LoadReport, error) {
	ctx, span := tracer.Start(ctx, "Store.Replace")
	defer span.End()
	span.SetAttributes(attribute.String("table", table), attribute.Int("rows", len(rows)))

	var report LoadReport

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return report, fmt.Errorf("%w: begin transaction on %s: %w", models.ErrStorageFailure, table, err)
	}

	fail := func(stage string, err error) (LoadReport, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to roll back", "table", table, "err", rbErr)
		}
		return LoadReport{}, fmt.Errorf("%w: %s on %s: %w", models.ErrStorageFailure, stage, table, err)
	}

	if _, err := tx.Delete(table, nil).WithContext(ctx).Execute(); err != nil {
		return fail("delete", err)
	}

	for i, row := range rows {
		if _, err := tx.NewQuery("SAVEPOINT row_insert").WithContext(ctx).Execute(); err != nil {
			return fail("savepoint", err)
		}

		_, err := tx.Insert(table, row).WithContext(ctx).Execute()
		if err == nil {
			if _, err := tx.NewQuery("RELEASE SAVEPOINT row_insert").WithContext(ctx).Execute(); err != nil {
				return fail("release savepoint", err)
			}
			report.Inserted++
			continue
		}

		if !isUniqueViolation(err) {
			return fail(fmt.Sprintf("insert row %d", i), err)
		}

		if _, rbErr := tx.NewQuery("ROLLBACK TO SAVEPOINT row_insert").WithContext(ctx).Execute(); rbErr != nil {
			return fail("rollback to savepoint", rbErr)
		}
		if _, rbErr := tx.NewQuery("RELEASE SAVEPOINT row_insert").WithContext(ctx).Execute(); rbErr != nil {
			return fail("release savepoint", rbErr)
		}
		report.Skipped++
		slog.Warn("skipping duplicate row", "table", table, "row", i, "err", err)
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit")
		return LoadReport{}, fmt.Errorf("%w: commit on %s: %w", models.ErrStorageFailure, table, err)
	}

	span.SetAttributes(attribute.Int("inserted", report.Inserted), attribute.Int("skipped", report.Skipped))
	return report, nil
}

// isUniqueViolation recognises both modernc and cgo sqlite drivers, the
// latter only through its message.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Store) ReplaceParties(ctx context.Context, parties []models.Party) (LoadReport, error) {
	rows := make([]dbx.Params, 0, len(parties))
	for _, p := range parties {
		rows = append(rows, partyParams(p))
	}
	return s.Replace(ctx, TableParties, rows)
}

func (s *Store) ReplaceCandidates(ctx context.Context, candidates []models.Candidate) (LoadReport, error) {
	rows := make([]dbx.Params, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, candidateParams(c))
	}
	return s.Replace(ctx, TableCandidates, rows)
}

func partyParams(p models.Party) dbx.Params {
	var registered any
	if p.RegistrationDate != nil {
		registered = p.RegistrationDate.Format(dateLayout)
	}
	var symbol any
	if p.JNESymbolID != nil {
		symbol = *p.JNESymbolID
	}
	ideology := p.Ideology
	if ideology == "" {
		ideology = models.IdeologyUnknown
	}

	return dbx.Params{
		"id":                p.ID,
		"jne_symbol_id":     symbol,
		"name":              p.Name,
		"acronym":           nullable(p.Acronym),
		"registration_date": registered,
		"logo":              blob(p.Logo),
		"legal_address":     nullable(p.LegalAddress),
		"phones":            nullable(p.Phones),
		"website":           nullable(p.Website),
		"email":             nullable(p.Email),
		"titular":           nullable(p.Titular),
		"alternate":         nullable(p.Alternate),
		"ideology":          string(ideology),
	}
}

func candidateParams(c models.Candidate) dbx.Params {
	return dbx.Params{
		"id":             c.ID,
		"full_name":      c.FullName,
		"candidacy_type": string(c.CandidacyType),
		"profile_url":    nullable(c.ProfileURL),
		"photo":          blob(c.Photo),
		"party_name":     nullable(c.PartyRef),
		"region":         nullable(c.Region),
		"biography":      nullable(c.Biography),
		"created_at":     c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func blob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

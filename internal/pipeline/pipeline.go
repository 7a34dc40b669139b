package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"elecciones/internal/formatter"
	"elecciones/internal/linker"
	"elecciones/internal/models"
	"elecciones/internal/parser"
	"elecciones/internal/storage"
)

var tracer = otel.Tracer("elecciones/internal/pipeline")

// Fetcher downloads one asset, nil on any failure
type Fetcher interface {
	Fetch(ctx context.Context, url string) []byte
}

// Store is the write side the pipelines load into
type Store interface {
	ReplaceParties(ctx context.Context, parties []models.Party) (storage.LoadReport, error)
	ReplaceCandidates(ctx context.Context, candidates []models.Candidate) (storage.LoadReport, error)
	PartyNames(ctx context.Context) ([]string, error)
}

// Runner drives the extract, dedupe, fetch, normalize and load stages
type Runner struct {
	parsers       *parser.ParserManager
	fetcher       Fetcher
	store         Store
	now           func() time.Time
	linkThreshold float64
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func WithLinkThreshold(threshold float64) Option {
	return func(r *Runner) { r.linkThreshold = threshold }
}

func New(parsers *parser.ParserManager, fetcher Fetcher, store Store, opts ...Option) *Runner {
	r := &Runner{
		parsers:       parsers,
		fetcher:       fetcher,
		store:         store,
		now:           time.Now,
		linkThreshold: linker.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type snapshot struct {
	source models.Source
	html   []byte
}

// Run ingests sources into the pipeline's table. Every source is read
// before anything is written, so a missing file leaves storage untouched.
// When no source contains the expected structure the run is aborted
// without writes and reported, not failed.
func (r *Runner) Run(ctx context.Context, pipeline models.Pipeline, sources []models.Source) (Report, error) {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()
	span.SetAttributes(attribute.String("pipeline", string(pipeline)))

	start := r.now()
	report := Report{Pipeline: pipeline, Sources: len(sources)}

	p, err := r.parsers.GetParser(pipeline)
	if err != nil {
		return report, err
	}

	snapshots, err := readSources(pipeline, sources)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read sources")
		return report, err
	}

	var seqs []iter.Seq[models.RawEntry]
	for _, snap := range snapshots {
		seq, err := p.Extract(ctx, snap.source, snap.html)
		if errors.Is(err, models.ErrStructureNotFound) {
			slog.Warn("expected structure not found, check the snapshot", "pipeline", pipeline, "source", snap.source.Path)
			continue
		}
		if err != nil {
			span.RecordError(err)
			return report, fmt.Errorf("failed to extract %s: %w", snap.source.Path, err)
		}
		seqs = append(seqs, seq)
	}
	if len(seqs) == 0 {
		slog.Warn("no source had the expected structure, nothing written", "pipeline", pipeline)
		report.Aborted = true
		report.Duration = r.now().Sub(start)
		return report, nil
	}

	entries, dropped := parser.Dedupe(concat(seqs), p.NaturalKey())
	report.Found = len(entries) + dropped
	report.Duplicates = dropped
	slog.Info("found entries", "pipeline", pipeline, "count", report.Found)
	if dropped > 0 {
		slog.Info("dropped duplicate entries", "pipeline", pipeline, "count", dropped, "key", p.NaturalKey())
	}

	assets := make([][]byte, len(entries))
	for i, entry := range entries {
		url, ok := entry.Get(p.AssetField())
		if !ok {
			continue
		}
		assets[i] = r.fetcher.Fetch(ctx, url)
		if assets[i] == nil {
			report.AssetsFailed++
			continue
		}
		report.AssetsFetched++
		report.AssetBytes += len(assets[i])
	}

	var load storage.LoadReport
	switch pipeline {
	case models.PipelineParties:
		load, err = r.loadParties(ctx, entries, assets)
	case models.PipelineCandidates:
		load, err = r.loadCandidates(ctx, entries, assets)
	}
	report.Duration = r.now().Sub(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load")
		return report, err
	}

	report.Inserted = load.Inserted
	report.Skipped = load.Skipped
	slog.Info("successfully loaded", "pipeline", pipeline, "inserted", load.Inserted, "skipped", load.Skipped)
	return report, nil
}

func (r *Runner) loadParties(ctx context.Context, entries []models.RawEntry, logos [][]byte) (storage.LoadReport, error) {
	f := formatter.New(formatter.WithClock(r.now))
	parties := make([]models.Party, len(entries))
	for i, entry := range entries {
		parties[i] = f.FormatParty(entry, logos[i])
	}
	return r.store.ReplaceParties(ctx, parties)
}

func (r *Runner) loadCandidates(ctx context.Context, entries []models.RawEntry, photos [][]byte) (storage.LoadReport, error) {
	names, err := r.store.PartyNames(ctx)
	if err != nil {
		return storage.LoadReport{}, fmt.Errorf("%w: %w", models.ErrStorageFailure, err)
	}
	if len(names) == 0 {
		slog.Warn("party registry is empty, candidate parties are kept as scraped")
	}

	f := formatter.New(
		formatter.WithClock(r.now),
		formatter.WithResolver(linker.NewPartyLinker(names, r.linkThreshold)),
	)
	candidates := make([]models.Candidate, len(entries))
	for i, entry := range entries {
		candidates[i] = f.FormatCandidate(entry, photos[i])
	}
	return r.store.ReplaceCandidates(ctx, candidates)
}

func readSources(pipeline models.Pipeline, sources []models.Source) ([]snapshot, error) {
	snapshots := make([]snapshot, 0, len(sources))
	for _, src := range sources {
		if src.Pipeline == "" {
			src.Pipeline = pipeline
		}
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("invalid source: %w", err)
		}

		html, err := os.ReadFile(src.Path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingSourceFile, src.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
		}
		snapshots = append(snapshots, snapshot{source: src, html: html})
	}
	return snapshots, nil
}

func concat(seqs []iter.Seq[models.RawEntry]) iter.Seq[models.RawEntry] {
	return func(yield func(models.RawEntry) bool) {
		for _, seq := range seqs {
			for entry := range seq {
				if !yield(entry) {
					return
				}
			}
		}
	}
}

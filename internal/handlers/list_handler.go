package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"elecciones/internal/storage"
)

// Lister is the read side of the store
type Lister interface {
	ListParties(ctx context.Context) ([]storage.PartyListing, error)
	ListCandidates(ctx context.Context, filter storage.CandidateFilter) ([]storage.CandidateListing, error)
	ListCenters(ctx context.Context, filter storage.CenterFilter) ([]storage.CenterListing, error)
}

// ListHandler answers listing requests with JSON
type ListHandler struct {
	store  Lister
	indent bool
}

func NewListHandler(store Lister, indent bool) *ListHandler {
	return &ListHandler{
		store:  store,
		indent: indent,
	}
}

func (h *ListHandler) HandleListParties(ctx context.Context, w io.Writer) error {
	parties, err := h.store.ListParties(ctx)
	if err != nil {
		return fmt.Errorf("error fetching parties: %w", err)
	}
	slog.Debug("listing parties", "count", len(parties))
	return h.encode(w, parties)
}

func (h *ListHandler) HandleListCandidates(ctx context.Context, w io.Writer, filter storage.CandidateFilter) error {
	candidates, err := h.store.ListCandidates(ctx, filter)
	if err != nil {
		return fmt.Errorf("error fetching candidates: %w", err)
	}
	slog.Debug("listing candidates", "count", len(candidates), "region", filter.Region, "type", filter.CandidacyType)
	return h.encode(w, candidates)
}

func (h *ListHandler) HandleListCenters(ctx context.Context, w io.Writer, filter storage.CenterFilter) error {
	centers, err := h.store.ListCenters(ctx, filter)
	if err != nil {
		return fmt.Errorf("error fetching centers: %w", err)
	}
	slog.Debug("listing centers", "count", len(centers), "district", filter.District, "name", filter.Name)
	return h.encode(w, centers)
}

func (h *ListHandler) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if h.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

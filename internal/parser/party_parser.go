package parser

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"elecciones/internal/models"
)

// DefaultPartyBaseURL is the JNE registry origin logo paths are relative to.
const DefaultPartyBaseURL = "https://sroppublico.jne.gob.pe"

// PartyParser reads the JNE registry table of political organizations.
type PartyParser struct {
	baseURL *url.URL
	schema  Schema
}

// NewPartyParser creates a party parser resolving relative logo paths
// against baseURL (DefaultPartyBaseURL when empty).
func NewPartyParser(baseURL string) (*PartyParser, error) {
	if baseURL == "" {
		baseURL = DefaultPartyBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid party base url %q: %w", baseURL, err)
	}

	rules := Column(1,
		Attr(models.FieldLogoURL, "img", "src"),
		Text(models.FieldPartyName, "span[title]"),
		Prefixed(models.FieldRegistrationDate, "span", "Fecha de Inscripción:"),
	)
	rules = append(rules, Column(2,
		NextText(models.FieldLegalAddress, `span[title="Dirección"]`, "div"),
		NextText(models.FieldPhones, `span[title="Teléfonos"]`, "div"),
		NextText(models.FieldWebsite, `span[title="Página web"]`, "div"),
		NextText(models.FieldEmail, `span[title="Correo electrónico"]`, "div"),
		DefinitionTerm(models.FieldTitular, "Titular"),
		DefinitionTerm(models.FieldAlternate, "Alterno"),
	)...)

	return &PartyParser{
		baseURL: base,
		schema: Schema{
			Container: "table#tblOrganizacionPolitica",
			Items:     "tbody > tr",
			Required:  models.FieldPartyName,
			Rules:     rules,
			Accept:    acceptPartyRow,
		},
	}, nil
}

func acceptPartyRow(row *goquery.Selection) bool {
	if cells := row.ChildrenFiltered("td").Length(); cells != 3 {
		slog.Warn("skipping party row with unexpected format", "cells", cells)
		return false
	}
	return true
}

func (p *PartyParser) Pipeline() models.Pipeline {
	return models.PipelineParties
}

func (p *PartyParser) NaturalKey() string {
	return models.FieldPartyName
}

func (p *PartyParser) AssetField() string {
	return models.FieldLogoURL
}

func (p *PartyParser) Extract(ctx context.Context, source models.Source, html []byte) (iter.Seq[models.RawEntry], error) {
	ctx, span := tracer.Start(ctx, "PartyParser.Extract")
	defer span.End()

	return p.schema.Extract(ctx, html, func(entry models.RawEntry) {
		resolveField(p.baseURL, entry, models.FieldLogoURL)
	})
}

// resolveField makes a relative url in entry absolute. Unparseable
// values are removed so that no fetch is attempted.
func resolveField(base *url.URL, entry models.RawEntry, field string) {
	raw, ok := entry.Get(field)
	if !ok {
		return
	}
	ref, err := url.Parse(raw)
	if err != nil {
		slog.Warn("discarding unparseable url", "field", field, "value", raw, "err", err)
		delete(entry, field)
		return
	}
	entry[field] = base.ResolveReference(ref).String()
}

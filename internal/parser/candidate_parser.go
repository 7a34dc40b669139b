package parser

import (
	"context"
	"fmt"
	"iter"
	"net/url"

	"elecciones/internal/models"
)

// DefaultCandidateBaseURL is the origin of the candidate listing pages.
const DefaultCandidateBaseURL = "https://eleccionesperu.pe"

// CandidateParser reads the candidate cards of a grid listing page.
type CandidateParser struct {
	baseURL *url.URL
	schema  Schema
}

// NewCandidateParser creates a candidate parser resolving relative
// profile and photo urls against baseURL (DefaultCandidateBaseURL when empty).
func NewCandidateParser(baseURL string) (*CandidateParser, error) {
	if baseURL == "" {
		baseURL = DefaultCandidateBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate base url %q: %w", baseURL, err)
	}

	return &CandidateParser{
		baseURL: base,
		schema: Schema{
			Container: "div.vc_grid-item",
			Required:  models.FieldCandidateName,
			Rules: []Rule{
				Text(models.FieldCandidateName, "div.vc_gitem-post-data-source-post_title h4"),
				Attr(models.FieldProfileURL, "a.vc_gitem-link", "href"),
				FirstOf(models.FieldImageURL,
					Attr(models.FieldImageURL, "img.vc_gitem-zone-img", "src"),
					StyleURL(models.FieldImageURL, `div.vc_gitem-zone-a[style*="background-image"]`),
				),
				Labeled(models.FieldCandidateParty, "div.vc_gitem-acf", ".vc_gitem-acf-label", "Partido"),
				Labeled(models.FieldRegion, "div.vc_gitem-acf", ".vc_gitem-acf-label", "Región"),
				Markdown(models.FieldBiography, "div.vc_gitem-post-data-source-post_excerpt"),
			},
		},
	}, nil
}

func (p *CandidateParser) Pipeline() models.Pipeline {
	return models.PipelineCandidates
}

// NaturalKey is the profile url: two cards for the same person share it
// even when the displayed name differs.
func (p *CandidateParser) NaturalKey() string {
	return models.FieldProfileURL
}

func (p *CandidateParser) AssetField() string {
	return models.FieldImageURL
}

func (p *CandidateParser) Extract(ctx context.Context, source models.Source, html []byte) (iter.Seq[models.RawEntry], error) {
	ctx, span := tracer.Start(ctx, "CandidateParser.Extract")
	defer span.End()

	return p.schema.Extract(ctx, html, func(entry models.RawEntry) {
		entry[models.FieldCandidacyType] = string(source.CandidacyType)
		resolveField(p.baseURL, entry, models.FieldProfileURL)
		resolveField(p.baseURL, entry, models.FieldImageURL)
	})
}

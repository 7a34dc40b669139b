package parser

import (
	"bytes"
	"context"
	"iter"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"elecciones/internal/models"
)

// Schema describes where the items of a page live and how to read them.
type Schema struct {
	// Container must match at least one node, otherwise the page is
	// treated as structurally broken.
	Container string
	// Items selects the items inside the container. Empty means the
	// container matches are the items themselves.
	Items string
	// Required is the field an entry must carry to be emitted.
	Required string
	Rules    []Rule
	// Accept, when set, filters items before any rule runs.
	Accept func(item *goquery.Selection) bool
}

func emptySeq(func(models.RawEntry) bool) {}

// Extract parses html and returns a lazy sequence of entries. finish, when
// not nil, is applied to every emitted entry.
func (s Schema) Extract(ctx context.Context, html []byte, finish func(models.RawEntry)) (iter.Seq[models.RawEntry], error) {
	_, span := tracer.Start(ctx, "Schema.Extract")
	defer span.End()
	span.SetAttributes(attribute.String("container", s.Container))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return emptySeq, NewParseError("parse", err)
	}

	container := doc.Find(s.Container)
	if container.Length() == 0 {
		span.SetStatus(codes.Error, "container not found")
		return emptySeq, NewParseError("locate", models.ErrStructureNotFound)
	}

	items := container
	if s.Items != "" {
		items = container.Find(s.Items)
	}
	span.SetAttributes(attribute.Int("items", items.Length()))

	return func(yield func(models.RawEntry) bool) {
		for i := range items.Nodes {
			item := items.Eq(i)
			if s.Accept != nil && !s.Accept(item) {
				continue
			}

			entry := make(models.RawEntry, len(s.Rules))
			for _, rule := range s.Rules {
				rule.apply(item, entry)
			}
			if _, ok := entry.Get(s.Required); !ok {
				slog.Warn("dropping item without required field", "field", s.Required, "index", i)
				continue
			}
			if finish != nil {
				finish(entry)
			}
			if !yield(entry) {
				return
			}
		}
	}, nil
}

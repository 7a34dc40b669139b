// internal/parser/parser.go
package parser

import (
	"context"
	"fmt"
	"iter"

	"elecciones/internal/models"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("elecciones/internal/parser")

// Parser defines the interface for the per-pipeline extraction strategies
type Parser interface {
	// Pipeline returns the pipeline this parser feeds (e.g., "parties")
	Pipeline() models.Pipeline

	// NaturalKey returns the raw field entries are deduplicated on
	NaturalKey() string

	// AssetField returns the raw field holding the entry's image url
	AssetField() string

	// Extract turns a stored html snapshot into raw entries
	Extract(ctx context.Context, source models.Source, html []byte) (iter.Seq[models.RawEntry], error)
}

// ParseError represents a parsing error with a specific stage
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage string, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}

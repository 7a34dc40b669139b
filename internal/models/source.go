package models

import "fmt"

// Pipeline identifies which ingestion pipeline a source feeds
type Pipeline string

const (
	PipelineParties    Pipeline = "parties"
	PipelineCandidates Pipeline = "candidates"
)

// ValidatePipeline checks if the pipeline is known
func ValidatePipeline(p Pipeline) error {
	switch p {
	case PipelineParties, PipelineCandidates:
		return nil
	default:
		return fmt.Errorf("invalid pipeline: %s", p)
	}
}

// Source represents one stored HTML snapshot feeding a pipeline
type Source struct {
	Pipeline      Pipeline      `json:"pipeline"`
	Path          string        `json:"path"`
	CandidacyType CandidacyType `json:"candidacy_type,omitempty"`
}

// Validate ensures all required fields are present and valid
func (s *Source) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("path is required")
	}
	if err := ValidatePipeline(s.Pipeline); err != nil {
		return err
	}
	if s.Pipeline == PipelineCandidates && s.CandidacyType == "" {
		return fmt.Errorf("candidacy type is required for candidate source %s", s.Path)
	}
	return nil
}

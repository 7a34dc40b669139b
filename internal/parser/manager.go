package parser

import (
	"fmt"

	"elecciones/internal/models"
)

// ParserManager manages the parsers of every pipeline
type ParserManager struct {
	parsers map[models.Pipeline]Parser
}

// ManagerOptions carries the origins relative asset paths are resolved against
type ManagerOptions struct {
	PartyBaseURL     string
	CandidateBaseURL string
}

// NewParserManager creates a parser manager with the party and candidate parsers registered
func NewParserManager(opts ManagerOptions) (*ParserManager, error) {
	m := &ParserManager{
		parsers: make(map[models.Pipeline]Parser),
	}

	partyParser, err := NewPartyParser(opts.PartyBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create party parser: %w", err)
	}
	m.RegisterParser(partyParser)

	candidateParser, err := NewCandidateParser(opts.CandidateBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate parser: %w", err)
	}
	m.RegisterParser(candidateParser)

	return m, nil
}

// RegisterParser adds a new parser to the manager
func (m *ParserManager) RegisterParser(parser Parser) {
	m.parsers[parser.Pipeline()] = parser
}

// GetParser retrieves a parser by pipeline
func (m *ParserManager) GetParser(pipeline models.Pipeline) (Parser, error) {
	parser, ok := m.parsers[pipeline]
	if !ok {
		return nil, fmt.Errorf("no parser found for pipeline: %s", pipeline)
	}
	return parser, nil
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elecciones/internal/models"
)

func TestParserManager(t *testing.T) {
	m, err := NewParserManager(ManagerOptions{})
	require.NoError(t, err)

	p, err := m.GetParser(models.PipelineParties)
	require.NoError(t, err)
	assert.Equal(t, models.FieldPartyName, p.NaturalKey())
	assert.Equal(t, models.FieldLogoURL, p.AssetField())

	p, err = m.GetParser(models.PipelineCandidates)
	require.NoError(t, err)
	assert.Equal(t, models.FieldProfileURL, p.NaturalKey())

	_, err = m.GetParser("centers")
	assert.Error(t, err)
}

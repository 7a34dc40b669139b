package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	tel, err := Setup(context.Background(), "elecciones", "")
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	tel, err := Setup(context.Background(), "elecciones", "http://127.0.0.1:4318")
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	// nothing is listening, shutdown may report the failed flush
	_ = tel.Shutdown(context.Background())
}

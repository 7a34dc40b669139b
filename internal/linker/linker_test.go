package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "renovacion popular", Fold("  RENOVACIÓN   Popular "))
	assert.Equal(t, "somos peru", Fold("Somos Perú"))
	assert.Equal(t, "", Fold("   "))
}

func TestPartyLinkerResolve(t *testing.T) {
	l := NewPartyLinker([]string{
		"ALIANZA PARA EL PROGRESO",
		"FUERZA POPULAR",
		"RENOVACIÓN POPULAR",
		"renovacion popular",
		"",
	}, 0)

	link, ok := l.Resolve("Renovacion Popular")
	require.True(t, ok)
	assert.Equal(t, "RENOVACIÓN POPULAR", link.Name)
	assert.Equal(t, 1.0, link.Correlation)

	link, ok = l.Resolve("Fuerza Populr")
	require.True(t, ok)
	assert.Equal(t, "FUERZA POPULAR", link.Name)
	assert.GreaterOrEqual(t, link.Correlation, DefaultThreshold)
	assert.Less(t, link.Correlation, 1.0)

	_, ok = l.Resolve("Partido Nacionalista")
	assert.False(t, ok)

	_, ok = l.Resolve("")
	assert.False(t, ok)
}

func TestPartyLinkerEmptyRegistry(t *testing.T) {
	l := NewPartyLinker(nil, 0)
	_, ok := l.Resolve("Fuerza Popular")
	assert.False(t, ok)
}

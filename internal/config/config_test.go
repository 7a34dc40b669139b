package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elecciones/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvOTLPEndpoint, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "elecciones.json5"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesLocalOverlay(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvOTLPEndpoint, "")
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "elecciones.json5"), `{
  // shared settings
  data_dir: "data",
  sources: { parties: "snapshots/partidos.html" },
  fetch: { timeout_seconds: 5 },
}`)
	writeFile(t, filepath.Join(dir, "elecciones.local.json5"), `{
  verbose: true,
  fetch: { cloudflare_bypass: true },
}`)

	cfg, err := Load(filepath.Join(dir, "elecciones.json5"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "snapshots/partidos.html", cfg.Sources.Parties)
	assert.Equal(t, "gobernadores.html", cfg.Sources.Governors)
	assert.Equal(t, 5, cfg.Fetch.TimeoutSeconds)
	assert.True(t, cfg.Fetch.CloudflareBypass)
	assert.Equal(t, "https://eleccionesperu.pe/", cfg.Fetch.Referer)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvDataDir, "/var/lib/elecciones")
	t.Setenv(EnvOTLPEndpoint, "localhost:4318")

	cfg, err := Load(filepath.Join(t.TempDir(), "elecciones.json5"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/elecciones", cfg.DataDir)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvOTLPEndpoint, "")
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "elecciones.json5"), `{ party_base_url: "not a url", link_threshold: 2 }`)
	_, err := Load(filepath.Join(dir, "elecciones.json5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "party_base_url")

	writeFile(t, filepath.Join(dir, "elecciones.json5"), `{ data_dir: `)
	_, err = Load(filepath.Join(dir, "elecciones.json5"))
	require.Error(t, err)
}

func TestSources(t *testing.T) {
	cfg := Default()

	parties := cfg.PartySources()
	require.Len(t, parties, 1)
	assert.NoError(t, parties[0].Validate())

	candidates := cfg.CandidateSources()
	require.Len(t, candidates, 2)
	assert.Equal(t, models.CandidacyGovernor, candidates[0].CandidacyType)
	assert.Equal(t, models.CandidacyMayor, candidates[1].CandidacyType)
	for _, src := range candidates {
		assert.NoError(t, src.Validate())
	}
}

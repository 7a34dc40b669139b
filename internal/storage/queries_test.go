package storage_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elecciones/internal/models"
	"elecciones/internal/storage"
	"elecciones/internal/testutil"
)

func TestListParties(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	_, err := store.ReplaceParties(ctx, []models.Party{
		{ID: "2", Name: "SOMOS PERÚ", Ideology: models.IdeologyUnknown},
		{ID: "1", Name: "FUERZA POPULAR", Logo: []byte("logo"), Ideology: models.IdeologyUnknown},
	})
	require.NoError(t, err)

	listing, err := store.ListParties(ctx)
	require.NoError(t, err)
	require.Len(t, listing, 2)

	assert.Equal(t, "FUERZA POPULAR", listing[0].Name)
	require.NotNil(t, listing[0].Logo)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("logo")), *listing[0].Logo)
	assert.Nil(t, listing[1].Logo)
	assert.Equal(t, "Desconocido", listing[1].Ideology)

	names, err := store.PartyNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FUERZA POPULAR", "SOMOS PERÚ"}, names)
}

func TestListCandidatesFilters(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	symbol := 7
	_, err := store.ReplaceParties(ctx, []models.Party{
		{ID: "p1", Name: "FUERZA POPULAR", JNESymbolID: &symbol, Ideology: models.IdeologyUnknown},
	})
	require.NoError(t, err)

	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.ReplaceCandidates(ctx, []models.Candidate{
		{ID: "c1", FullName: "Rosa", CandidacyType: models.CandidacyGovernor, Region: strPtr("Puno"), PartyRef: strPtr("FUERZA POPULAR"), CreatedAt: now},
		{ID: "c2", FullName: "Rafael", CandidacyType: models.CandidacyMayor, Region: strPtr("Lima"), PartyRef: strPtr("Partido Nuevo"), CreatedAt: now},
		{ID: "c3", FullName: "Carla", CandidacyType: models.CandidacyMayor, Region: strPtr("Lima Provincias"), CreatedAt: now},
	})
	require.NoError(t, err)

	all, err := store.ListCandidates(ctx, storage.CandidateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lima, err := store.ListCandidates(ctx, storage.CandidateFilter{Region: "lima"})
	require.NoError(t, err)
	require.Len(t, lima, 2)
	assert.Equal(t, "Carla", lima[0].FullName)
	assert.Nil(t, lima[1].PartyID)

	governors, err := store.ListCandidates(ctx, storage.CandidateFilter{CandidacyType: "gober"})
	require.NoError(t, err)
	require.Len(t, governors, 1)
	require.NotNil(t, governors[0].PartyID)
	assert.Equal(t, "p1", *governors[0].PartyID)
	require.NotNil(t, governors[0].PartySymbolID)
	assert.Equal(t, 7, *governors[0].PartySymbolID)
	assert.Equal(t, "2026-05-01T00:00:00Z", governors[0].CreatedAt)

	none, err := store.ListCandidates(ctx, storage.CandidateFilter{Region: "lima", CandidacyType: "gober"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListCandidatesFilterIgnoresAccents(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.ReplaceCandidates(ctx, []models.Candidate{
		{ID: "c1", FullName: "Rosa", CandidacyType: models.CandidacyGovernor, Region: strPtr("Junín"), CreatedAt: now},
		{ID: "c2", FullName: "Rafael", CandidacyType: models.CandidacyMayor, Region: strPtr("Lima"), CreatedAt: now},
		{ID: "c3", FullName: "Sin región", CandidacyType: models.CandidacyMayor, CreatedAt: now},
	})
	require.NoError(t, err)

	for _, region := range []string{"JUNÍN", "junin", "Junín", "NÍN"} {
		t.Run(region, func(t *testing.T) {
			rows, err := store.ListCandidates(ctx, storage.CandidateFilter{Region: region})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "c1", rows[0].ID)
		})
	}

	mayors, err := store.ListCandidates(ctx, storage.CandidateFilter{CandidacyType: "ALCALDE"})
	require.NoError(t, err)
	assert.Len(t, mayors, 2)
}

func TestListCenters(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	testutil.Exec(t, store,
		`INSERT INTO voting_centers (id, name, address, district) VALUES ('v1', 'IE Ricardo Palma', 'Av. Uno 1', 'Miraflores')`,
		`INSERT INTO voting_centers (id, name, address, district) VALUES ('v2', 'Colegio Guadalupe', 'Av. Dos 2', 'Cercado de Lima')`,
		`INSERT INTO polling_tables (number, center_id) VALUES ('000101', 'v1')`,
		`INSERT INTO polling_tables (number, center_id) VALUES ('000102', 'v1')`,
	)

	centers, err := store.ListCenters(ctx, storage.CenterFilter{})
	require.NoError(t, err)
	require.Len(t, centers, 2)
	assert.Equal(t, "Colegio Guadalupe", centers[0].Name)
	assert.Zero(t, centers[0].Tables)
	assert.Equal(t, 2, centers[1].Tables)

	miraflores, err := store.ListCenters(ctx, storage.CenterFilter{District: "MIRA"})
	require.NoError(t, err)
	require.Len(t, miraflores, 1)
	assert.Equal(t, "v1", miraflores[0].ID)

	byName, err := store.ListCenters(ctx, storage.CenterFilter{Name: "guadalupe", District: "lima"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
}

func TestListCentersFilterIgnoresAccents(t *testing.T) {
	store := testutil.SetupStore(t)
	ctx := context.Background()

	testutil.Exec(t, store,
		`INSERT INTO voting_centers (id, name, address, district) VALUES ('v1', 'IE José Olaya', 'Jr. Uno 1', 'Breña')`,
		`INSERT INTO voting_centers (id, name, address) VALUES ('v2', 'IE Sin Distrito', 'Jr. Dos 2')`,
	)

	brena, err := store.ListCenters(ctx, storage.CenterFilter{District: "BREÑA"})
	require.NoError(t, err)
	require.Len(t, brena, 1)
	assert.Equal(t, "v1", brena[0].ID)

	jose, err := store.ListCenters(ctx, storage.CenterFilter{Name: "jose olaya"})
	require.NoError(t, err)
	require.Len(t, jose, 1)
	assert.Equal(t, "v1", jose[0].ID)
}

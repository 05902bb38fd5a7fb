package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bravo-deck-backend/internal/model"
)

// A helper to create an in-memory SQLite database with migrations applied.
func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.LabwareEntry{}))
	return NewGormStore(db)
}

func TestLabwareCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := model.LabwareEntry{
		Name:          "Test Plate",
		Description:   "96-well test plate",
		BaseClass:     model.BaseClassPlate,
		NumberOfWells: 96,
		WellTipVolume: 360,
	}
	require.NoError(t, s.UpsertLabware(ctx, &entry))

	got, err := s.GetLabware(ctx, "Test Plate")
	require.NoError(t, err)
	assert.Equal(t, "96-well test plate", got.Description)
	assert.Equal(t, 96, got.NumberOfWells)

	// Upsert replaces in place.
	entry.Description = "revised"
	require.NoError(t, s.UpsertLabware(ctx, &entry))
	got, err = s.GetLabware(ctx, "Test Plate")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Description)

	entries, err := s.ListLabware(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.DeleteLabware(ctx, "Test Plate"))
	_, err = s.GetLabware(ctx, "Test Plate")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.DeleteLabware(ctx, "Test Plate"))
}

func TestUpsertRequiresName(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertLabware(context.Background(), &model.LabwareEntry{})
	assert.Error(t, err)
}

func TestCloneLabware(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedTemplates(ctx))

	cloned, err := s.CloneLabware(ctx, "96 Well Microplate", "My Assay Plate")
	require.NoError(t, err)
	assert.Equal(t, "My Assay Plate", cloned.Name)
	assert.Equal(t, "Clone of 96 Well Microplate", cloned.Description)
	assert.Equal(t, 96, cloned.NumberOfWells)

	got, err := s.GetLabware(ctx, "My Assay Plate")
	require.NoError(t, err)
	assert.Equal(t, 360.0, got.WellTipVolume)

	_, err = s.CloneLabware(ctx, "Nonexistent Plate", "Copy")
	assert.Error(t, err)
}

func TestSeedTemplatesIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedTemplates(ctx))
	entries, err := s.ListLabware(ctx)
	require.NoError(t, err)
	seeded := len(entries)
	assert.Equal(t, len(DefaultTemplates()), seeded)

	// Local edits survive a reseed.
	edited := entries[0]
	edited.Description = "locally edited"
	require.NoError(t, s.UpsertLabware(ctx, &edited))
	require.NoError(t, s.SeedTemplates(ctx))

	entries, err = s.ListLabware(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, seeded)
	got, err := s.GetLabware(ctx, edited.Name)
	require.NoError(t, err)
	assert.Equal(t, "locally edited", got.Description)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	dst := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, src.SeedTemplates(ctx))

	path := filepath.Join(t.TempDir(), "labware.json")
	require.NoError(t, src.ExportLabwareJSON(ctx, path))

	imported, err := dst.ImportLabwareJSON(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultTemplates()), imported)

	got, err := dst.GetLabware(ctx, "96 Tip Box 200uL")
	require.NoError(t, err)
	assert.Equal(t, model.BaseClassTipBox, got.BaseClass)
	assert.Equal(t, 200.0, got.TipCapacity)
}

func TestImportMissingFile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ImportLabwareJSON(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

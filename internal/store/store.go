package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bravo-deck-backend/internal/model"
)

// Store defines the labware catalog operations.
type Store interface {
	DB() *gorm.DB
	ListLabware(ctx context.Context) ([]model.LabwareEntry, error)
	GetLabware(ctx context.Context, name string) (*model.LabwareEntry, error)
	UpsertLabware(ctx context.Context, entry *model.LabwareEntry) error
	CloneLabware(ctx context.Context, sourceName, newName string) (*model.LabwareEntry, error)
	DeleteLabware(ctx context.Context, name string) error
	ExportLabwareJSON(ctx context.Context, path string) error
	ImportLabwareJSON(ctx context.Context, path string) (int, error)
	SeedTemplates(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed catalog store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for collaborators that manage their own
// tables (push subscriptions).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListLabware returns every catalog entry ordered by name.
func (s *gormStore) ListLabware(ctx context.Context) ([]model.LabwareEntry, error) {
	var entries []model.LabwareEntry
	if err := s.db.WithContext(ctx).Order("name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list labware entries: %w", err)
	}
	return entries, nil
}

// GetLabware fetches one entry by name. A missing entry surfaces as
// gorm.ErrRecordNotFound for the caller to classify.
func (s *gormStore) GetLabware(ctx context.Context, name string) (*model.LabwareEntry, error) {
	var entry model.LabwareEntry
	if err := s.db.WithContext(ctx).First(&entry, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertLabware creates or replaces an entry keyed by name.
func (s *gormStore) UpsertLabware(ctx context.Context, entry *model.LabwareEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("labware entry requires a name")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert labware %q: %w", entry.Name, err)
	}
	return nil
}

// CloneLabware copies an existing entry under a new name. Cloning a catalog
// entry is the usual way a new plate definition gets authored.
func (s *gormStore) CloneLabware(ctx context.Context, sourceName, newName string) (*model.LabwareEntry, error) {
	if newName == "" {
		return nil, fmt.Errorf("clone target requires a name")
	}
	source, err := s.GetLabware(ctx, sourceName)
	if err != nil {
		return nil, fmt.Errorf("clone source %q: %w", sourceName, err)
	}

	cloned := *source
	cloned.Name = newName
	cloned.Description = fmt.Sprintf("Clone of %s", sourceName)
	cloned.CreatedAt = time.Time{}
	cloned.UpdatedAt = time.Time{}

	if err := s.UpsertLabware(ctx, &cloned); err != nil {
		return nil, err
	}
	return &cloned, nil
}

// DeleteLabware removes an entry by name. Deleting a missing entry is not an
// error.
func (s *gormStore) DeleteLabware(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Delete(&model.LabwareEntry{}, "name = ?", name).Error; err != nil {
		return fmt.Errorf("failed to delete labware %q: %w", name, err)
	}
	return nil
}

// labwareExport is the on-disk shape of a catalog dump.
type labwareExport struct {
	ExportedAt time.Time            `json:"exported_at"`
	Entries    []model.LabwareEntry `json:"entries"`
}

// ExportLabwareJSON dumps the whole catalog to a JSON file.
func (s *gormStore) ExportLabwareJSON(ctx context.Context, path string) error {
	entries, err := s.ListLabware(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(labwareExport{ExportedAt: time.Now().UTC(), Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal labware export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write labware export: %w", err)
	}
	log.Printf("Exported %d labware entries to %s", len(entries), path)
	return nil
}

// ImportLabwareJSON loads entries from a JSON dump, upserting each one.
// Returns the number of imported entries.
func (s *gormStore) ImportLabwareJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read labware import: %w", err)
	}

	var dump labwareExport
	if err := json.Unmarshal(data, &dump); err != nil {
		return 0, fmt.Errorf("failed to unmarshal labware import: %w", err)
	}

	imported := 0
	for i := range dump.Entries {
		entry := dump.Entries[i]
		if entry.Name == "" {
			log.Printf("Warning: skipping labware import entry %d with no name", i)
			continue
		}
		if err := s.UpsertLabware(ctx, &entry); err != nil {
			return imported, err
		}
		imported++
	}
	log.Printf("Imported %d labware entries from %s", imported, path)
	return imported, nil
}

// SeedTemplates installs the canned labware definitions if missing. Existing
// entries are left untouched so local edits survive restarts.
func (s *gormStore) SeedTemplates(ctx context.Context) error {
	templates := DefaultTemplates()
	for i := range templates {
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&templates[i]).Error
		if err != nil {
			return fmt.Errorf("failed to seed labware template %q: %w", templates[i].Name, err)
		}
	}
	return nil
}

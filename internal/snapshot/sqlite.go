package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glebarez/sqlite"

	"github.com/oxhq/typecore/internal/interproc"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/types"
)

// Store wraps a GORM connection over any of the backends in this package
// (sqlite primary, mysql/libsql alternates) and persists whole-snapshot
// blobs keyed by an opaque id (typically the source archive digest),
// satisfying spec §6.4's "(a) normalized documentation entities ... keyed
// by source archive digest" at the blob granularity — SaveEntities/
// SaveSummaries below additionally persist the row-level breakdown for
// direct SQL inspection, repurposing the teacher's per-row Stage/Apply
// persistence instead of only an opaque blob.
type Store struct {
	db *gorm.DB
}

// Migrate runs the snapshot schema's migrations, the direct repurposing of
// the teacher's db.Migrate (gorm.AutoMigrate over its own models).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&EntityRow{}, &SummaryRow{}, &SnapshotBlob{})
}

// Open connects to a sqlite database at path (or an in-memory database for
// ":memory:") using glebarez/sqlite, the pure-Go driver the ambient stack
// names as primary so the module builds without cgo (teacher: db.Connect's
// default branch, minus the libsql-over-HTTP special case which lives in
// libsql.go here).
func Open(path string, debug bool) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("snapshot: creating database directory: %w", err)
			}
		}
	}
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(sqlite.Open(path), config)
	if err != nil {
		return nil, fmt.Errorf("snapshot: connecting to sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("snapshot: migrating sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveBlob persists one whole-snapshot JSON envelope under id (e.g. the
// source archive digest).
func (s *Store) SaveBlob(id string, schemaVersion int, data []byte) error {
	row := SnapshotBlob{ID: id, SchemaVersion: schemaVersion, Data: data}
	return s.db.Save(&row).Error
}

// LoadBlob retrieves a previously-saved snapshot envelope by id.
func (s *Store) LoadBlob(id string) ([]byte, int, error) {
	var row SnapshotBlob
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		return nil, 0, fmt.Errorf("snapshot: loading blob %s: %w", id, err)
	}
	return row.Data, row.SchemaVersion, nil
}

// SaveEntities persists one row per repository entity, tagged with
// archiveDigest, so individual entities can be inspected or queried with
// plain SQL independent of the opaque blob (the row-level half of the
// teacher's Stage-per-change persistence, repurposed here to one row per
// ingested entity rather than one row per edit).
func (s *Store) SaveEntities(archiveDigest string, entities []types.RawTypeData) error {
	for _, e := range entities {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("snapshot: marshaling entity %s: %w", e.ID(), err)
		}
		row := EntityRow{
			ID:            e.ID(),
			ArchiveDigest: archiveDigest,
			NameASCII:     e.Name.ASCII,
			NameNative:    e.Name.Native,
			Category:      e.Category,
			Source:        string(e.Source),
			Documentation: e.Documentation,
			Payload:       datatypes.JSON(payload),
		}
		if err := s.db.Save(&row).Error; err != nil {
			return fmt.Errorf("snapshot: saving entity row %s: %w", e.ID(), err)
		}
	}
	return nil
}

// LoadEntities rebuilds a Repository from the rows tagged with
// archiveDigest.
func (s *Store) LoadEntities(archiveDigest string) (*repository.Repository, error) {
	var rows []EntityRow
	if err := s.db.Where("archive_digest = ?", archiveDigest).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("snapshot: loading entity rows: %w", err)
	}
	repo := repository.New()
	for _, row := range rows {
		var raw types.RawTypeData
		if err := json.Unmarshal(row.Payload, &raw); err != nil {
			return nil, fmt.Errorf("snapshot: unmarshaling entity %s: %w", row.ID, err)
		}
		if err := repo.Put(raw); err != nil {
			return nil, fmt.Errorf("snapshot: restoring entity %s: %w", row.ID, err)
		}
	}
	return repo, nil
}

// SaveSummaries persists one row per cached interprocedural summary,
// tagged with moduleDigest, mirroring SaveEntities for the cache side
// (the teacher's Apply row, repurposed to one row per (function, argument
// shape) fact rather than one row per applied transform).
func (s *Store) SaveSummaries(moduleDigest string, cache *interproc.Cache) error {
	for _, e := range cache.Entries() {
		payload, err := json.Marshal(e.Summary)
		if err != nil {
			return fmt.Errorf("snapshot: marshaling summary %s/%s: %w", e.FunctionID, e.ArgKey, err)
		}
		row := SummaryRow{
			ID:           moduleDigest + ":" + e.FunctionID + ":" + e.ArgKey,
			ModuleDigest: moduleDigest,
			FunctionID:   e.FunctionID,
			ArgKey:       e.ArgKey,
			Payload:      datatypes.JSON(payload),
		}
		if err := s.db.Save(&row).Error; err != nil {
			return fmt.Errorf("snapshot: saving summary row %s: %w", row.ID, err)
		}
	}
	return nil
}

// LoadSummaries rebuilds an interproc.Cache from the rows tagged with
// moduleDigest.
func (s *Store) LoadSummaries(moduleDigest string) (*interproc.Cache, error) {
	var rows []SummaryRow
	if err := s.db.Where("module_digest = ?", moduleDigest).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("snapshot: loading summary rows: %w", err)
	}
	cache := interproc.NewCache()
	for _, row := range rows {
		var sum interproc.Summary
		if err := json.Unmarshal(row.Payload, &sum); err != nil {
			return nil, fmt.Errorf("snapshot: unmarshaling summary %s: %w", row.ID, err)
		}
		cache.PutRaw(row.FunctionID, row.ArgKey, sum)
	}
	return cache, nil
}

// Close releases the underlying SQL connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

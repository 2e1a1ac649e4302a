// Package snapshot implements the persistence contract of spec §6.4:
// opaque snapshot(writer)/restore(reader) operations over the repository's
// entities and the interprocedural summary cache, plus pluggable
// GORM-backed stores (sqlite primary, mysql/libsql alternates, a
// websocket-streamed remote store) that hold the serialized blob.
//
// Grounded on the teacher's models package (gorm model shape,
// datatypes.JSON metadata columns, TableName overrides) and its
// internal/db package (Connect/Migrate idiom, dual sqlite driver setup),
// repurposed from "code-transformation staging/audit records" to
// "ingested type entities and interprocedural summaries".
package snapshot

import (
	"time"

	"gorm.io/datatypes"
)

// EntityRow is one repository entity as persisted by a Store backend,
// the direct repurposing of the teacher's models.Stage: same tagged-field,
// TableName-override shape, new domain fields.
type EntityRow struct {
	ID            string         `gorm:"primaryKey;type:varchar(255)"`
	ArchiveDigest string         `gorm:"type:varchar(64);index"`
	NameASCII     string         `gorm:"type:varchar(255);index"`
	NameNative    string         `gorm:"type:varchar(255)"`
	Category      string         `gorm:"type:varchar(100);index"`
	Source        string         `gorm:"type:varchar(20);index"`
	Documentation string         `gorm:"type:text"`
	Payload       datatypes.JSON `gorm:"type:jsonb"` // the full RawTypeData, JSON-encoded
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
}

// SummaryRow is one interprocedural function summary as persisted,
// repurposing the teacher's models.Apply (a committed, keyed fact record).
type SummaryRow struct {
	ID           string         `gorm:"primaryKey;type:varchar(255)"`
	ModuleDigest string         `gorm:"type:varchar(64);index"`
	FunctionID   string         `gorm:"type:varchar(255);index"`
	ArgKey       string         `gorm:"type:varchar(512)"`
	Payload      datatypes.JSON `gorm:"type:jsonb"` // the full Summary, JSON-encoded
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

// SnapshotBlob is one opaque, whole-snapshot byte blob (the JSON Envelope
// from format.go), keyed by the schema version that produced it — the
// repurposing of the teacher's models.Session (one row per completed
// unit of work, here one row per snapshot() call).
type SnapshotBlob struct {
	ID            string    `gorm:"primaryKey;type:varchar(255)"`
	SchemaVersion int       `gorm:"index"`
	Data          []byte    `gorm:"type:blob"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (EntityRow) TableName() string    { return "snapshot_entities" }
func (SummaryRow) TableName() string   { return "snapshot_summaries" }
func (SnapshotBlob) TableName() string { return "snapshot_blobs" }

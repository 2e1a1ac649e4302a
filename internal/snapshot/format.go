package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/oxhq/typecore/internal/interproc"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/types"
)

// SchemaVersion is the snapshot format's version header (supplemental
// feature: "explicit schema version header on every snapshot", grounded on
// the teacher's model.ToolConfig.SchemaVersion). Restore refuses any
// envelope whose version does not match.
const SchemaVersion = 1

// ErrVersionMismatch is returned by Restore when the snapshot's schema
// version does not match SchemaVersion (spec §6.4: "Version mismatch on
// restore invalidates the whole snapshot").
var ErrVersionMismatch = fmt.Errorf("snapshot: schema version mismatch")

// summaryRecord is one interprocedural summary's on-disk shape: flat,
// independent of the in-memory Cache's internal map-of-maps layout.
type summaryRecord struct {
	FunctionID string             `json:"function_id"`
	ArgKey     string             `json:"arg_key"`
	Summary    interproc.Summary  `json:"summary"`
}

// Envelope is the whole-snapshot JSON shape: version header, every
// repository entity, and every cached interprocedural summary.
type Envelope struct {
	SchemaVersion int                  `json:"schema_version"`
	Entities      []types.RawTypeData  `json:"entities"`
	Summaries     []summaryRecord      `json:"summaries"`
}

// Snapshot writes repo's entities and cache's summaries as one JSON
// envelope to w (spec §6.4 "exposes snapshot(writer)"). The core treats
// persistence as opaque beyond this envelope shape; which Store backend
// eventually holds the bytes is a caller concern (see sqlite.go/mysql.go/
// libsql.go/remote.go).
func Snapshot(w io.Writer, repo *repository.Repository, cache *interproc.Cache) error {
	env := Envelope{
		SchemaVersion: SchemaVersion,
		Entities:      repo.All(),
	}
	if cache != nil {
		for _, e := range cache.Entries() {
			env.Summaries = append(env.Summaries, summaryRecord{FunctionID: e.FunctionID, ArgKey: e.ArgKey, Summary: e.Summary})
		}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("snapshot: encoding envelope: %w", err)
	}
	return nil
}

// Restore reads a JSON envelope from r and rebuilds a fresh Repository and
// interproc.Cache from it (spec §6.4 "exposes ... restore(reader)"; §8.1
// property 7: "restore(snapshot(S)) yields a repository answering the same
// queries as S"). The returned repository is writable; callers that want
// the usual reader-parallel guarantees must call Freeze themselves.
func Restore(r io.Reader) (*repository.Repository, *interproc.Cache, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("snapshot: decoding envelope: %w", err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, env.SchemaVersion, SchemaVersion)
	}

	repo := repository.New()
	for _, raw := range env.Entities {
		if err := repo.Put(raw); err != nil {
			return nil, nil, fmt.Errorf("snapshot: restoring entity %s: %w", raw.ID(), err)
		}
	}

	cache := interproc.NewCache()
	for _, rec := range env.Summaries {
		cache.PutRaw(rec.FunctionID, rec.ArgKey, rec.Summary)
	}

	return repo, cache, nil
}

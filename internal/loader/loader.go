// Package loader implements the one-shot ingestion contract of spec §6.1:
// consume an opaque upstream archive and produce a stream of RawTypeData
// records, skipping malformed ones with a logged warning rather than
// failing initialization.
//
// Grounded on the teacher's provider self-registration idiom
// (internal/registry.Registry.Register at startup) for "ingest once, own
// the records thereafter", generalized from "one provider struct per
// language" to "one RawTypeData per archive record".
package loader

import (
	"errors"
	"io"

	"github.com/oxhq/typecore/internal/obslog"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/types"
)

// ErrConfiguration marks a configuration error per spec §7: a missing or
// unreadable upstream archive. Initialization aborts on this error; a
// malformed individual record does not.
var ErrConfiguration = errors.New("loader: configuration error")

// Record is the normalized shape produced by a Source before it becomes a
// RawTypeData — kept distinct from types.RawTypeData so Validate can report
// exactly which required field was missing without constructing a partial
// domain value.
type Record struct {
	NameASCII       string
	NameNative      string
	Category        string
	Source          types.SourceTag
	Documentation   string
	Methods         []types.Method
	Properties      []types.Property
	AvailableFacets []types.FacetKind
	DefaultFacet    *types.FacetKind
	Metadata        map[string]string
}

// Source streams Records from one upstream archive. Next returns io.EOF
// once exhausted. A Source is opaque to this package: the documentation-ZIP
// and metadata-XML ingestion paths each implement their own Source reading
// the teacher-external archive formats explicitly out of scope (spec §1).
type Source interface {
	Next() (Record, error)
}

// Validate checks spec §6.1's required-field list: "qualified bilingual
// names, at least one of documentation/methods/properties, source tag,
// available facets". Returns a description of the first violation found, or
// "" if the record is well-formed.
func Validate(r Record) string {
	if r.NameASCII == "" {
		return "missing ASCII qualified name"
	}
	if r.NameNative == "" {
		return "missing native-script qualified name"
	}
	if r.Source == "" {
		return "missing source tag"
	}
	if len(r.AvailableFacets) == 0 {
		return "no available facets"
	}
	if r.Documentation == "" && len(r.Methods) == 0 && len(r.Properties) == 0 {
		return "none of documentation/methods/properties present"
	}
	return ""
}

func toRaw(r Record) types.RawTypeData {
	return types.RawTypeData{
		Name:            types.BilingualName{ASCII: r.NameASCII, Native: r.NameNative},
		Category:        r.Category,
		Source:          r.Source,
		Documentation:   r.Documentation,
		Methods:         r.Methods,
		Properties:      r.Properties,
		AvailableFacets: r.AvailableFacets,
		DefaultFacet:    r.DefaultFacet,
		Metadata:        r.Metadata,
	}
}

// Result summarizes one Load call for the caller's initialization log.
type Result struct {
	Loaded  int
	Skipped int
}

// Load drains src into repo, validating each record and skipping malformed
// ones with a warning logged through log rather than aborting (spec §6.1,
// §7 "input errors ... recovered locally: the record is skipped"). A
// duplicate-entity conflict from repo.Put is likewise logged and skipped,
// since §7 scopes that invariant violation to programmer error during
// steady state, not to loader ingestion of a legitimately re-occurring
// record from the same archive.
func Load(src Source, repo *repository.Repository, log *obslog.Logger) (Result, error) {
	var res Result
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, errors.Join(ErrConfiguration, err)
		}
		if reason := Validate(rec); reason != "" {
			res.Skipped++
			if log != nil {
				log.Warning("skipping malformed loader record", obslog.Fields{
					"name":   rec.NameASCII,
					"reason": reason,
				})
			}
			continue
		}
		if err := repo.Put(toRaw(rec)); err != nil {
			res.Skipped++
			if log != nil {
				log.Warning("skipping record rejected by repository", obslog.Fields{
					"name":  rec.NameASCII,
					"error": err.Error(),
				})
			}
			continue
		}
		res.Loaded++
	}
}

package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/oxhq/typecore/internal/types"
)

// configDoc is the extracted record shape of one configuration metadata
// entry (a catalog, document, or other metadata-tree object), analogous to
// platformDoc but for the source project's own declared types rather than
// platform-documented ones.
type configDoc struct {
	Root       string        `json:"root"` // e.g. "Catalogs", "Documents" — the metadata collection root
	NameASCII  string        `json:"name_ascii"`
	NameNative string        `json:"name_native"`
	Doc        string        `json:"documentation"`
	Methods    []methodDoc   `json:"methods"`
	Properties []propertyDoc `json:"properties"`
	UUID       string        `json:"uuid"`
}

// defaultConfigurationFacets is the facet set every configuration metadata
// object carries: it is always reachable via its manager (root access), a
// find/by-id reference, and a loaded/created object — the three states
// spec §4.6 attributes to Configuration-faceted entities.
var defaultConfigurationFacets = []types.FacetKind{types.FacetManager, types.FacetReference, types.FacetObject}

// ConfigurationSource decodes a stream of JSON configuration-metadata
// records (the extracted shape upstream of the source project's own XML
// metadata tree, itself out of scope per spec §1).
type ConfigurationSource struct {
	dec *json.Decoder
}

// NewConfigurationSource wraps r, expecting a JSON array of config doc
// records.
func NewConfigurationSource(r io.Reader) (*ConfigurationSource, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading configuration metadata opening token: %v", ErrConfiguration, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: configuration metadata is not a JSON array", ErrConfiguration)
	}
	return &ConfigurationSource{dec: dec}, nil
}

// Next implements Source.
func (c *ConfigurationSource) Next() (Record, error) {
	if !c.dec.More() {
		return Record{}, io.EOF
	}
	var doc configDoc
	if err := c.dec.Decode(&doc); err != nil {
		return Record{}, err
	}
	return configDocToRecord(doc), nil
}

func configDocToRecord(doc configDoc) Record {
	methods := make([]types.Method, len(doc.Methods))
	for i, m := range doc.Methods {
		methods[i] = methodDocToMethod(m)
	}
	props := make([]types.Property, len(doc.Properties))
	for i, pr := range doc.Properties {
		props[i] = types.Property{
			Name:          types.BilingualName{ASCII: pr.NameASCII, Native: pr.NameNative},
			Type:          types.RefTo(pr.Type),
			ReadOnly:      pr.ReadOnly,
			Documentation: pr.Doc,
		}
	}
	defaultFacet := types.FacetManager
	return Record{
		NameASCII:       doc.Root + "." + doc.NameASCII,
		NameNative:      doc.NameNative,
		Category:        doc.Root,
		Source:          types.SourceConfiguration,
		Documentation:   doc.Doc,
		Methods:         methods,
		Properties:      props,
		AvailableFacets: defaultConfigurationFacets,
		DefaultFacet:    &defaultFacet,
		Metadata:        map[string]string{"uuid": doc.UUID},
	}
}

package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/oxhq/typecore/internal/types"
)

// platformDoc is the extracted record shape of one platform documentation
// archive entry (spec §1: "we specify only the extracted record shape",
// the XML/ZIP archive format itself is out of scope).
type platformDoc struct {
	NameASCII  string          `json:"name_ascii"`
	NameNative string          `json:"name_native"`
	Category   string          `json:"category"`
	Doc        string          `json:"documentation"`
	Methods    []methodDoc     `json:"methods"`
	Properties []propertyDoc   `json:"properties"`
	Facets     []string        `json:"facets"`
	Default    *string         `json:"default_facet"`
	UUID       string          `json:"uuid"`
	XDTO       string          `json:"xdto_namespace"`
	Raw        json.RawMessage `json:"-"`
}

type methodDoc struct {
	NameASCII  string          `json:"name_ascii"`
	NameNative string          `json:"name_native"`
	Params     []paramDoc      `json:"parameters"`
	Returns    *string         `json:"returns"`
	Doc        string          `json:"documentation"`
	Availability []string      `json:"availability"`
}

type paramDoc struct {
	NameASCII    string  `json:"name_ascii"`
	NameNative   string  `json:"name_native"`
	DeclaredType *string `json:"declared_type"`
	HasDefault   bool    `json:"has_default"`
	ByValue      bool    `json:"by_value"`
}

type propertyDoc struct {
	NameASCII  string `json:"name_ascii"`
	NameNative string `json:"name_native"`
	Type       string `json:"type"`
	ReadOnly   bool   `json:"read_only"`
	Doc        string `json:"documentation"`
}

// PlatformSource decodes a stream of JSON documents (one extracted platform
// documentation record each) from the normalized extraction this package
// assumes upstream of the ZIP/XML archive (spec §1 out-of-scope boundary).
// Grounded on the teacher's json.Decoder streaming idiom used to ingest
// tree-sitter query-pack manifests (internal/registry load path).
type PlatformSource struct {
	dec *json.Decoder
}

// NewPlatformSource wraps r, expecting a JSON array of platform doc records.
func NewPlatformSource(r io.Reader) (*PlatformSource, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading platform archive opening token: %v", ErrConfiguration, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: platform archive is not a JSON array", ErrConfiguration)
	}
	return &PlatformSource{dec: dec}, nil
}

// Next implements Source.
func (p *PlatformSource) Next() (Record, error) {
	if !p.dec.More() {
		return Record{}, io.EOF
	}
	var doc platformDoc
	if err := p.dec.Decode(&doc); err != nil {
		return Record{}, err
	}
	return platformDocToRecord(doc), nil
}

func platformDocToRecord(doc platformDoc) Record {
	var defaultFacet *types.FacetKind
	if doc.Default != nil {
		f := types.FacetKind(*doc.Default)
		defaultFacet = &f
	}
	facets := make([]types.FacetKind, len(doc.Facets))
	for i, f := range doc.Facets {
		facets[i] = types.FacetKind(f)
	}
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
	return Record{
		NameASCII:       doc.NameASCII,
		NameNative:      doc.NameNative,
		Category:        doc.Category,
		Source:          types.SourcePlatform,
		Documentation:   doc.Doc,
		Methods:         methods,
		Properties:      props,
		AvailableFacets: facets,
		DefaultFacet:    defaultFacet,
		Metadata:        map[string]string{"uuid": doc.UUID, "xdto_namespace": doc.XDTO},
	}
}

func methodDocToMethod(m methodDoc) types.Method {
	params := make([]types.Parameter, len(m.Params))
	for i, p := range m.Params {
		var declared *types.TypeReference
		if p.DeclaredType != nil {
			ref := types.RefTo(*p.DeclaredType)
			declared = &ref
		}
		params[i] = types.Parameter{
			Name:         types.BilingualName{ASCII: p.NameASCII, Native: p.NameNative},
			DeclaredType: declared,
			HasDefault:   p.HasDefault,
			ByValue:      p.ByValue,
		}
	}
	var ret *types.TypeReference
	if m.Returns != nil {
		ref := types.RefTo(*m.Returns)
		ret = &ref
	}
	return types.Method{
		Name:          types.BilingualName{ASCII: m.NameASCII, Native: m.NameNative},
		Parameters:    params,
		ReturnType:    ret,
		Documentation: m.Doc,
		Availability:  m.Availability,
	}
}

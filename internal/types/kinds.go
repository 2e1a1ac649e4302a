// Package types contains pure, language-agnostic data structures describing
// the type system of the analyzed source language. These are the universal
// contracts shared by the repository, resolvers, flow analyzer, union
// arithmetic and facet registry.
//
// This file contains ONLY data structures (plus trivial constructors/string
// forms). No resolution logic lives here.
package types

// FacetKind is the closed variant set of views over a single underlying
// type entity.
type FacetKind string

const (
	FacetManager     FacetKind = "Manager"
	FacetObject      FacetKind = "Object"
	FacetReference   FacetKind = "Reference"
	FacetMetadata    FacetKind = "Metadata"
	FacetCollection  FacetKind = "Collection"
	FacetConstructor FacetKind = "Constructor"
	FacetSingleton   FacetKind = "Singleton"
)

// SourceTag identifies which ingestion source produced a RawTypeData record.
type SourceTag string

const (
	SourcePlatform      SourceTag = "Platform"
	SourceConfiguration SourceTag = "Configuration"
	SourceBuiltIn       SourceTag = "BuiltIn"
	SourceUserDefined   SourceTag = "UserDefined"
)

// ProvenanceTag records how a TypeResolution was produced.
type ProvenanceTag string

const (
	ProvenanceStatic    ProvenanceTag = "Static"
	ProvenanceInferred  ProvenanceTag = "Inferred"
	ProvenanceRuntime   ProvenanceTag = "Runtime"
	ProvenancePredicted ProvenanceTag = "Predicted"
)

// Primitive enumerates the built-in primitive value kinds.
type Primitive string

const (
	PrimitiveNumber    Primitive = "Number"
	PrimitiveString    Primitive = "String"
	PrimitiveBoolean   Primitive = "Boolean"
	PrimitiveDate      Primitive = "Date"
	PrimitiveNull      Primitive = "Null"
	PrimitiveUndefined Primitive = "Undefined"
)

// BilingualName is a name that exists in two scripts (ASCII and the source
// language's native script), with a stable canonical id derived from both.
type BilingualName struct {
	ASCII  string
	Native string
}

// CanonicalID folds a bilingual name pair to the case/script-insensitive id
// used for all hashing and equality in the repository (spec §3.2 invariant 1,
// §9 "Bilingual identifiers"). It is grounded on the teacher registry's
// strings.ToLower normalization, generalized from one name form to two.
func (b BilingualName) CanonicalID() string {
	return canonicalFold(b.ASCII) + "\x00" + canonicalFold(b.Native)
}

func canonicalFold(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, foldRune(r))
	}
	return string(out)
}

func foldRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	// Cyrillic uppercase block (the source language's native script), folded
	// the same way ASCII is, so а/А compare equal regardless of script case.
	if r >= 'А' && r <= 'Я' {
		return r + ('а' - 'А')
	}
	if r == 'Ё' {
		return 'ё'
	}
	return r
}

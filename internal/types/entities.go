package types

// TypeReference is a symbolic pointer into the repository: either a bare
// qualified name, a parametric reference (e.g. a collection element), or
// the sentinel Unknown. References are resolved lazily by the repository;
// cycles are permitted because only names, never direct pointers, are held
// here.
type TypeReference struct {
	// QualifiedName is the dotted name this reference points to, e.g.
	// "Catalogs.Items". Empty when Unknown is true.
	QualifiedName string

	// ElementOf holds the element reference for a parametric (collection)
	// reference; nil for a bare reference.
	ElementOf *TypeReference

	// Unknown marks the sentinel "no reference could be determined" case.
	Unknown bool
}

// UnknownRef is the sentinel unresolved type reference.
var UnknownRef = TypeReference{Unknown: true}

// RefTo builds a bare qualified-name reference.
func RefTo(qualifiedName string) TypeReference {
	return TypeReference{QualifiedName: qualifiedName}
}

// RefToElement builds a parametric reference over a collection's element type.
func RefToElement(elem TypeReference) TypeReference {
	e := elem
	return TypeReference{ElementOf: &e}
}

// Parameter describes one formal parameter of a Method.
type Parameter struct {
	Name         BilingualName
	DeclaredType *TypeReference // nil when undeclared
	HasDefault   bool
	ByValue      bool
}

// Method describes one callable member of a type entity.
type Method struct {
	Name          BilingualName
	Parameters    []Parameter
	ReturnType    *TypeReference // nil when the method returns nothing
	Documentation string
	Availability  []string // e.g. "server", "client"
}

// Property describes one data member of a type entity.
type Property struct {
	Name          BilingualName
	Type          TypeReference
	ReadOnly      bool
	Documentation string
}

// RawTypeData is an immutable record describing one type entity as ingested
// by a loader. The repository owns these exclusively after put() and never
// mutates them.
type RawTypeData struct {
	Name             BilingualName
	Category         string
	Source           SourceTag
	Documentation    string
	Methods          []Method
	Properties       []Property
	AvailableFacets  []FacetKind
	DefaultFacet     *FacetKind
	Metadata         map[string]string
}

// ID returns the stable internal identifier for this entity, independent of
// case or script.
func (r RawTypeData) ID() string {
	return r.Name.CanonicalID()
}

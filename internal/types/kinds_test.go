package types

import "testing"

func TestCanonicalIDFoldsCaseAndScript(t *testing.T) {
	tests := []struct {
		name string
		a, b BilingualName
		same bool
	}{
		{"ascii case differs", BilingualName{ASCII: "Catalogs"}, BilingualName{ASCII: "catalogs"}, true},
		{"native case differs", BilingualName{Native: "Справочники"}, BilingualName{Native: "справочники"}, true},
		{"different names", BilingualName{ASCII: "Catalogs"}, BilingualName{ASCII: "Documents"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.CanonicalID() == tt.b.CanonicalID()
			if got != tt.same {
				t.Errorf("CanonicalID equality = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestFacetKindConstants(t *testing.T) {
	tests := []struct {
		kind     FacetKind
		expected string
	}{
		{FacetManager, "Manager"},
		{FacetObject, "Object"},
		{FacetReference, "Reference"},
		{FacetMetadata, "Metadata"},
		{FacetCollection, "Collection"},
		{FacetConstructor, "Constructor"},
		{FacetSingleton, "Singleton"},
	}
	for _, tt := range tests {
		if string(tt.kind) != tt.expected {
			t.Errorf("got %s, want %s", tt.kind, tt.expected)
		}
	}
}

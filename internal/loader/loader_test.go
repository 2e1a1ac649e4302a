package loader

import (
	"strings"
	"testing"

	"github.com/oxhq/typecore/internal/obslog"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/types"
)

const platformFixture = `[
  {"name_ascii":"ValueTable","name_native":"ТаблицаЗначений","category":"Collections",
   "documentation":"A tabular in-memory value store.",
   "facets":["Collection"],
   "methods":[{"name_ascii":"Add","returns":"ValueTableRow"}]},
  {"name_ascii":"BareName","name_native":"","category":"Broken","facets":["Manager"],"documentation":"missing native name"}
]`

func TestLoadSkipsMalformedRecordsWithoutFailing(t *testing.T) {
	src, err := NewPlatformSource(strings.NewReader(platformFixture))
	if err != nil {
		t.Fatalf("NewPlatformSource: %v", err)
	}
	repo := repository.New()
	res, err := Load(src, repo, obslog.New())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if res.Loaded != 1 || res.Skipped != 1 {
		t.Fatalf("expected 1 loaded and 1 skipped, got %+v", res)
	}
	if _, ok := repo.GetByQualifiedName(types.BilingualName{ASCII: "ValueTable", Native: "ТаблицаЗначений"}); !ok {
		t.Fatalf("expected the well-formed record to be in the repository")
	}
}

const configFixture = `[
  {"root":"Catalogs","name_ascii":"Items","name_native":"Номенклатура","documentation":"Catalog of items."}
]`

func TestConfigurationSourceBuildsQualifiedRootDotNameAndDefaultFacets(t *testing.T) {
	src, err := NewConfigurationSource(strings.NewReader(configFixture))
	if err != nil {
		t.Fatalf("NewConfigurationSource: %v", err)
	}
	repo := repository.New()
	res, err := Load(src, repo, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if res.Loaded != 1 {
		t.Fatalf("expected 1 loaded, got %+v", res)
	}
	raw, ok := repo.GetByQualifiedName(types.BilingualName{ASCII: "Catalogs.Items", Native: "Номенклатура"})
	if !ok {
		t.Fatalf("expected Catalogs.Items to be loaded")
	}
	if raw.Source != types.SourceConfiguration {
		t.Fatalf("expected SourceConfiguration, got %v", raw.Source)
	}
	if len(raw.AvailableFacets) != 3 {
		t.Fatalf("expected 3 default facets (Manager/Reference/Object), got %v", raw.AvailableFacets)
	}
}

func TestValidateReportsFirstMissingField(t *testing.T) {
	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{"no ascii", Record{}, "missing ASCII qualified name"},
		{"no native", Record{NameASCII: "X"}, "missing native-script qualified name"},
		{"no source", Record{NameASCII: "X", NameNative: "Y"}, "missing source tag"},
		{"no facets", Record{NameASCII: "X", NameNative: "Y", Source: types.SourcePlatform}, "no available facets"},
		{"no content", Record{NameASCII: "X", NameNative: "Y", Source: types.SourcePlatform, AvailableFacets: []types.FacetKind{types.FacetManager}}, "none of documentation/methods/properties present"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Validate(c.rec); got != c.want {
				t.Fatalf("Validate() = %q, want %q", got, c.want)
			}
		})
	}
}

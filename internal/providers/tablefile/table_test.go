package tablefile

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

const yamlTable = `symbols:
  - name: length
    module: Base
    signature: "(a::AbstractArray)"
    doc: Array length.
  - name: length
    module: Core
    signature: "(s::String)"
    doc: String length.
`

const tomlTable = `[[symbols]]
name = "length"
module = "Base"
signature = "(a::AbstractArray)"
doc = "Array length."

[[symbols]]
name = "length"
module = "Core"
signature = "(s::String)"
doc = "String length."
`

const jsonTable = `{"symbols": [
  {"name": "length", "module": "Base", "signature": "(a::AbstractArray)", "doc": "Array length."},
  {"name": "length", "module": "Core", "signature": "(s::String)", "doc": "String length."}
]}`

func TestLoadFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"symbols.yaml": {Data: []byte(yamlTable)},
		"symbols.toml": {Data: []byte(tomlTable)},
		"symbols.json": {Data: []byte(jsonTable)},
	}
	for _, name := range []string{"symbols.yaml", "symbols.toml", "symbols.json"} {
		table, err := Load(fsys, name)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		all := table.All()
		if len(all) != 2 || all[0].Module != "Base" || all[1].Signature != "(s::String)" {
			t.Fatalf("Load(%s) returned %#v", name, all)
		}

		got, err := table.Lookup(context.Background(), interfaces.SymbolQuery{Name: "length", Modules: []string{"Core"}})
		if err != nil || len(got) != 1 || got[0].Doc != "String length." {
			t.Fatalf("Lookup on %s returned %#v %v", name, got, err)
		}
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	data := []byte("symbols:\n  - name: length\n    module: Base\n    extra: true\n")
	_, err := Parse("bad.yaml", data)
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) == 0 {
		t.Fatalf("expected schema issues, got %v", err)
	}
	for _, issue := range verr.Issues {
		if issue.Location != "/symbols/0" {
			t.Fatalf("unexpected issue location %q", issue.Location)
		}
	}
}

func TestParseRequiresSymbols(t *testing.T) {
	if _, err := Parse("empty.json", []byte(`{}`)); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse("symbols.xml", []byte("<symbols/>")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseMalformedInput(t *testing.T) {
	if _, err := Parse("broken.toml", []byte("[[symbols]\nname = ")); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

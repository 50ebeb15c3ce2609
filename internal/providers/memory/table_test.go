package memory

import (
	"context"
	"testing"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

func TestTableLookupKeepsOrder(t *testing.T) {
	table := NewTable(
		interfaces.Symbol{Name: "length", Module: "Core", Signature: "(s::String)"},
		interfaces.Symbol{Name: "first", Module: "Base"},
		interfaces.Symbol{Name: "Base.length", Module: "Base", Signature: "(a::Array)"},
		interfaces.Symbol{Name: "length", Module: "Base.Iterators"},
	)

	got, err := table.Lookup(context.Background(), interfaces.SymbolQuery{Name: "length"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 3 || got[0].Module != "Core" || got[1].Module != "Base" || got[2].Module != "Base.Iterators" {
		t.Fatalf("unexpected lookup order: %#v", got)
	}

	scoped, _ := table.Lookup(context.Background(), interfaces.SymbolQuery{Name: "length", Modules: []string{"Base"}})
	if len(scoped) != 2 {
		t.Fatalf("expected Base and Base.Iterators, got %#v", scoped)
	}

	qualified, _ := table.Lookup(context.Background(), interfaces.SymbolQuery{Name: "Core.length"})
	if len(qualified) != 1 || qualified[0].Module != "Core" {
		t.Fatalf("expected qualified match, got %#v", qualified)
	}
}

func TestTableLookupHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewTable().Lookup(ctx, interfaces.SymbolQuery{Name: "x"}); err == nil {
		t.Fatalf("expected context error")
	}
}

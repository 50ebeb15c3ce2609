package symbols

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/providers/memory"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

func fixtureTable() *memory.Table {
	return memory.NewTable(
		interfaces.Symbol{Name: "length", Module: "Base", Signature: "(a::AbstractArray)", Doc: "Array length."},
		interfaces.Symbol{Name: "length", Module: "Core", Signature: "(s::String)", Doc: "String length."},
		interfaces.Symbol{Name: "push!", Module: "Base", Signature: "(c, x)", Doc: "Push."},
		interfaces.Symbol{Name: "length", Module: "Extra", Doc: "Extra length."},
	)
}

func mustSpec(t *testing.T, raw string) document.TargetSpec {
	t.Helper()
	spec, err := document.ParseTargetSpec(raw)
	if err != nil {
		t.Fatalf("ParseTargetSpec(%q): %v", raw, err)
	}
	return spec
}

func TestResolveAcrossBuildModules(t *testing.T) {
	r := NewResolver(fixtureTable(), WithModules("Base", "Core"))

	got, err := r.Resolve(context.Background(), mustSpec(t, "length"), "Main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 || got[0].Module != "Base" || got[1].Module != "Core" {
		t.Fatalf("expected Base then Core, got %#v", got)
	}
}

func TestResolveNarrowsToCurrentModule(t *testing.T) {
	r := NewResolver(fixtureTable(), WithModules("Base", "Core"))

	got, err := r.Resolve(context.Background(), mustSpec(t, "length"), "Core")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0].Module != "Core" {
		t.Fatalf("expected only Core, got %#v", got)
	}
}

func TestResolveWithoutBuildModulesUsesCurrent(t *testing.T) {
	r := NewResolver(fixtureTable())
	got, _ := r.Resolve(context.Background(), mustSpec(t, "length"), "Extra")
	if len(got) != 1 || got[0].Module != "Extra" {
		t.Fatalf("expected Extra only, got %#v", got)
	}

	all, _ := r.Resolve(context.Background(), mustSpec(t, "length"), "")
	if len(all) != 3 {
		t.Fatalf("expected every module without scope, got %#v", all)
	}
}

func TestResolveBySignature(t *testing.T) {
	r := NewResolver(fixtureTable(), WithModules("Base", "Core"))

	got, err := r.Resolve(context.Background(), mustSpec(t, "length(x::String)"), "Main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0].Module != "Core" {
		t.Fatalf("expected the String method only, got %#v", got)
	}

	untyped, _ := r.Resolve(context.Background(), mustSpec(t, "push!(::Any, ::Any)"), "Base")
	if len(untyped) != 1 {
		t.Fatalf("expected untyped arguments to normalise to ::Any, got %#v", untyped)
	}

	none, _ := r.Resolve(context.Background(), mustSpec(t, "length(::Int)"), "Main")
	if len(none) != 0 {
		t.Fatalf("expected no match, got %#v", none)
	}
}

func TestResolveQualifiedName(t *testing.T) {
	r := NewResolver(fixtureTable(), WithModules("Base", "Core"))

	got, _ := r.Resolve(context.Background(), mustSpec(t, "Core.length"), "Base")
	if len(got) != 1 || got[0].Module != "Core" {
		t.Fatalf("expected qualifier to override current module, got %#v", got)
	}

	outside, _ := r.Resolve(context.Background(), mustSpec(t, "Extra.length"), "Base")
	if len(outside) != 0 {
		t.Fatalf("expected build module list to exclude Extra, got %#v", outside)
	}
}

type countingProvider struct {
	inner interfaces.SymbolProvider
	calls int
	err   error
}

func (c *countingProvider) Lookup(ctx context.Context, q interfaces.SymbolQuery) ([]interfaces.Symbol, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Lookup(ctx, q)
}

func TestResolveCachesProviderCalls(t *testing.T) {
	provider := &countingProvider{inner: fixtureTable()}
	r := NewResolver(provider, WithModules("Base"))

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), mustSpec(t, "length"), "Base"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if provider.calls != 1 || r.ProviderCalls() != 1 {
		t.Fatalf("expected a single provider call, got %d", provider.calls)
	}

	_, _ = r.Resolve(context.Background(), mustSpec(t, "length(::AbstractArray)"), "Base")
	if provider.calls != 2 {
		t.Fatalf("expected signature to use a separate cache entry, got %d calls", provider.calls)
	}
}

func TestResolveWrapsProviderFailure(t *testing.T) {
	provider := &countingProvider{err: errors.New("backend down")}
	r := NewResolver(provider)

	_, err := r.Resolve(context.Background(), mustSpec(t, "length"), "Base")
	if err == nil {
		t.Fatalf("expected provider error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != TextCodeProviderFailed || rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external provider error, got %v", err)
	}
}

func TestResolveWithoutProvider(t *testing.T) {
	if _, err := NewResolver(nil).Resolve(context.Background(), mustSpec(t, "x"), ""); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestIdentity(t *testing.T) {
	sym := interfaces.Symbol{Name: "length", Module: "Base", Signature: "(a :: AbstractArray)"}
	if got := Identity(sym); got != "Base.length(::AbstractArray)" {
		t.Fatalf("Identity = %q", got)
	}
	if got := Identity(interfaces.Symbol{Name: "Base.first"}); got != "Base.first" {
		t.Fatalf("Identity = %q", got)
	}
}

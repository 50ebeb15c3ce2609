package interfaces

import (
	"context"
	"strings"
)

// Symbol is a documented entity returned by a SymbolProvider. Name is the
// qualified name (for example "Base.length"); Signature is optional and
// written the way authors write it in docs blocks, e.g. "(::AbstractArray)".
type Symbol struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Module    string `json:"module" yaml:"module" toml:"module"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Doc       string `json:"doc" yaml:"doc" toml:"doc"`
}

// QualifiedName returns Name, prefixing Module when the provider supplied a
// bare name.
func (s Symbol) QualifiedName() string {
	name := strings.TrimSpace(s.Name)
	if strings.Contains(name, ".") || strings.TrimSpace(s.Module) == "" {
		return name
	}
	return strings.TrimSpace(s.Module) + "." + name
}

// ModuleName returns Module, or the qualifier of a qualified Name when the
// provider left Module empty.
func (s Symbol) ModuleName() string {
	if module := strings.TrimSpace(s.Module); module != "" {
		return module
	}
	name := strings.TrimSpace(s.Name)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return ""
}

// BareName returns the last segment of the qualified name.
func (s Symbol) BareName() string {
	name := s.QualifiedName()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// SymbolQuery describes a single provider lookup. Name may be bare ("length")
// or qualified ("Base.length"). Signature is already normalised and empty when
// the author did not write one. Modules is the allowed module scope; an empty
// slice means every module known to the provider.
type SymbolQuery struct {
	Name      string
	Signature string
	Modules   []string
}

// SymbolProvider retrieves documentation for symbols. Implementations must be
// side-effect free and return candidates in a stable order; the pipeline
// splices them in exactly that order.
type SymbolProvider interface {
	Lookup(ctx context.Context, query SymbolQuery) ([]Symbol, error)
}

// SymbolProviderFunc adapts a function to SymbolProvider.
type SymbolProviderFunc func(ctx context.Context, query SymbolQuery) ([]Symbol, error)

// Lookup calls f.
func (f SymbolProviderFunc) Lookup(ctx context.Context, query SymbolQuery) ([]Symbol, error) {
	return f(ctx, query)
}

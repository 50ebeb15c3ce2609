// Package memory provides an ordered in-memory symbol table.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// Table is a SymbolProvider over symbols kept in insertion order.
type Table struct {
	mu      sync.RWMutex
	symbols []interfaces.Symbol
}

var _ interfaces.SymbolProvider = (*Table)(nil)

// NewTable returns a table holding symbols in the given order.
func NewTable(symbols ...interfaces.Symbol) *Table {
	t := &Table{}
	t.Add(symbols...)
	return t
}

// Add appends symbols.
func (t *Table) Add(symbols ...interfaces.Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols = append(t.symbols, symbols...)
}

// Len returns the number of symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}

// All returns a copy of every symbol in order.
func (t *Table) All() []interfaces.Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]interfaces.Symbol(nil), t.symbols...)
}

// Lookup returns symbols whose bare or qualified name equals query.Name and
// whose module lies within query.Modules. Signatures are left to the caller.
func (t *Table) Lookup(ctx context.Context, query interfaces.SymbolQuery) ([]interfaces.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []interfaces.Symbol
	for _, sym := range t.symbols {
		if !NameMatches(sym, query.Name) || !InModules(sym.ModuleName(), query.Modules) {
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

// NameMatches compares name against the symbol's qualified name, or its bare
// name when name is unqualified.
func NameMatches(sym interfaces.Symbol, name string) bool {
	if strings.Contains(name, ".") {
		return sym.QualifiedName() == name
	}
	return sym.BareName() == name
}

// InModules reports whether module is one of modules or nested under one.
// An empty list matches everything.
func InModules(module string, modules []string) bool {
	if len(modules) == 0 {
		return true
	}
	for _, m := range modules {
		if module == m || strings.HasPrefix(module, m+".") {
			return true
		}
	}
	return false
}

// Package symbols resolves docs target specs against a SymbolProvider,
// applying module scope and signature narrowing. Provider answers are cached
// for the lifetime of a Resolver, which is one build.
package symbols

import (
	"context"
	"errors"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// ErrNoProvider is returned when a Resolver is used without a provider.
var ErrNoProvider = errors.New("symbols: no symbol provider configured")

// TextCodeProviderFailed tags provider failures.
const TextCodeProviderFailed = "SYMBOL_PROVIDER_FAILED"

// Option configures a Resolver.
type Option func(*Resolver)

// WithModules sets the build-level module list.
func WithModules(modules ...string) Option {
	return func(r *Resolver) {
		r.modules = cleanModules(modules)
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver narrows provider candidates for target specs. It is safe for
// concurrent use.
type Resolver struct {
	provider interfaces.SymbolProvider
	modules  []string
	logger   interfaces.Logger

	mu    sync.Mutex
	cache map[string][]interfaces.Symbol
	calls int
}

// NewResolver returns a resolver over provider.
func NewResolver(provider interfaces.SymbolProvider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: provider,
		logger:   logging.NoOp(),
		cache:    make(map[string][]interfaces.Symbol),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AllowedModules returns the module scope for a page whose current module is
// current. An empty result means no module filtering.
func (r *Resolver) AllowedModules(current string) []string {
	current = strings.TrimSpace(current)
	if len(r.modules) == 0 {
		if current == "" {
			return nil
		}
		return []string{current}
	}
	for _, m := range r.modules {
		if m == current {
			return []string{current}
		}
	}
	return append([]string(nil), r.modules...)
}

// ProviderCalls reports how many lookups reached the provider.
func (r *Resolver) ProviderCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Resolve returns every symbol matching spec for a page whose current module
// is current, in provider order. A qualified name is scoped to its
// qualifier instead of the current module; the build module list still
// applies. An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, spec document.TargetSpec, current string) ([]interfaces.Symbol, error) {
	if r.provider == nil {
		return nil, ErrNoProvider
	}

	query := interfaces.SymbolQuery{Name: spec.Name, Signature: spec.Signature}
	if q := spec.Qualifier(); q != "" {
		if !r.buildAllows(q) {
			return nil, nil
		}
		query.Modules = []string{q}
	} else {
		query.Modules = r.AllowedModules(current)
	}

	key := cacheKey(query)
	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cloneSymbols(cached), nil
	}

	candidates, err := r.provider.Lookup(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "symbol provider lookup failed").
			WithTextCode(TextCodeProviderFailed).
			WithMetadata(map[string]any{
				"name":      query.Name,
				"signature": query.Signature,
				"modules":   query.Modules,
			})
	}

	matches := filter(candidates, spec, query.Modules)
	r.logger.Debug("symbols.lookup",
		"name", query.Name,
		"signature", query.Signature,
		"modules", strings.Join(query.Modules, ","),
		"candidates", len(candidates),
		"matches", len(matches),
	)

	r.mu.Lock()
	r.calls++
	r.cache[key] = matches
	r.mu.Unlock()
	return cloneSymbols(matches), nil
}

func (r *Resolver) buildAllows(module string) bool {
	if len(r.modules) == 0 {
		return true
	}
	for _, m := range r.modules {
		if within(module, m) {
			return true
		}
	}
	return false
}

func filter(candidates []interfaces.Symbol, spec document.TargetSpec, modules []string) []interfaces.Symbol {
	var out []interfaces.Symbol
	for _, sym := range candidates {
		sym.Module = sym.ModuleName()
		if !nameMatches(sym, spec) || !moduleAllowed(sym.Module, modules) {
			continue
		}
		if spec.HasSignature() && !signatureMatches(sym.Signature, spec.Signature) {
			continue
		}
		out = append(out, sym)
	}
	return out
}

func nameMatches(sym interfaces.Symbol, spec document.TargetSpec) bool {
	if spec.Qualifier() != "" {
		return sym.QualifiedName() == spec.Name
	}
	return sym.BareName() == spec.Name
}

func moduleAllowed(module string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, m := range allowed {
		if within(module, m) {
			return true
		}
	}
	return false
}

// within reports whether module is scope or one of its submodules.
func within(module, scope string) bool {
	return module == scope || strings.HasPrefix(module, scope+".")
}

// signatureMatches reports whether a provider signature equals a normalised
// spec signature.
func signatureMatches(symbolSig, specSig string) bool {
	if strings.TrimSpace(symbolSig) == "" {
		return false
	}
	normalized, err := document.NormalizeSignature(symbolSig)
	return err == nil && normalized == specSig
}

// Identity is the anchor identity of a resolved symbol: qualified name plus
// normalised signature.
func Identity(sym interfaces.Symbol) string {
	sig := ""
	if strings.TrimSpace(sym.Signature) != "" {
		if normalized, err := document.NormalizeSignature(sym.Signature); err == nil {
			sig = normalized
		} else {
			sig = strings.Join(strings.Fields(sym.Signature), "")
		}
	}
	return sym.QualifiedName() + sig
}

func cacheKey(q interfaces.SymbolQuery) string {
	return q.Name + "|" + q.Signature + "|" + strings.Join(q.Modules, ",")
}

func cloneSymbols(in []interfaces.Symbol) []interfaces.Symbol {
	if in == nil {
		return nil
	}
	out := make([]interfaces.Symbol, len(in))
	copy(out, in)
	return out
}

func cleanModules(modules []string) []string {
	out := make([]string, 0, len(modules))
	seen := map[string]struct{}{}
	for _, m := range modules {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

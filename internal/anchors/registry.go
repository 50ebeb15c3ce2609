// Package anchors holds the build-wide anchor registry. Registration is
// append-only and first-wins; once frozen the registry only answers lookups.
package anchors

import (
	"errors"
	"sort"
	"sync"

	"github.com/goliatone/go-refdocs/document"
)

var (
	// ErrDuplicateAnchor is returned when a key is already registered.
	ErrDuplicateAnchor = errors.New("anchors: duplicate anchor")
	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("anchors: registry is frozen")
	// ErrEmptyKey is returned for anchors without an id.
	ErrEmptyKey = errors.New("anchors: empty anchor key")
)

// Registry maps anchor keys to anchors.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[document.AnchorKey]*document.Anchor
	order  []*document.Anchor
	byName map[string][]*document.Anchor
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[document.AnchorKey]*document.Anchor),
		byName: make(map[string][]*document.Anchor),
	}
}

// Register stores anchor under its key. When the key is taken the stored
// anchor is marked contested and returned together with ErrDuplicateAnchor.
func (r *Registry) Register(anchor document.Anchor) (document.Anchor, error) {
	if anchor.Key.IsZero() {
		return document.Anchor{}, ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return document.Anchor{}, ErrFrozen
	}
	if existing, ok := r.byKey[anchor.Key]; ok {
		existing.Contested = true
		return *existing, ErrDuplicateAnchor
	}

	stored := anchor
	r.byKey[anchor.Key] = &stored
	r.order = append(r.order, &stored)
	if anchor.Key.Origin == document.OriginSymbol && anchor.Symbol != nil {
		qualified := anchor.Symbol.QualifiedName()
		r.byName[qualified] = append(r.byName[qualified], &stored)
		if bare := anchor.Symbol.BareName(); bare != qualified {
			r.byName[bare] = append(r.byName[bare], &stored)
		}
	}
	return stored, nil
}

// Lookup returns the anchor registered under key.
func (r *Registry) Lookup(key document.AnchorKey) (document.Anchor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	anchor, ok := r.byKey[key]
	if !ok {
		return document.Anchor{}, false
	}
	return *anchor, true
}

// SymbolCandidates returns symbol anchors whose qualified or bare name is
// name, in registration order.
func (r *Registry) SymbolCandidates(name string) []document.Anchor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byName[name]
	out := make([]document.Anchor, 0, len(list))
	for _, a := range list {
		out = append(out, *a)
	}
	return out
}

// Freeze stops further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Len returns the number of anchors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Anchors returns the anchors accepted by keep, ordered by page build order
// and in-page position. A nil keep returns every anchor.
func (r *Registry) Anchors(keep func(document.Anchor) bool) []document.Anchor {
	r.mu.RLock()
	out := make([]document.Anchor, 0, len(r.order))
	for _, a := range r.order {
		if keep == nil || keep(*a) {
			out = append(out, *a)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ByOrigin keeps anchors of one origin.
func ByOrigin(origin document.Origin) func(document.Anchor) bool {
	return func(a document.Anchor) bool { return a.Key.Origin == origin }
}

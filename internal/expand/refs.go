package expand

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
)

// ResolveRefs points every @ref link at its anchor. Links without an anchor
// raise UnresolvedRef and stay inert.
func (e *Engine) ResolveRefs(ctx context.Context) error {
	if err := e.enter(StageIndexesExpanded, StageResolved); err != nil {
		return err
	}
	started := time.Now()

	bags := make([]*diagnostics.Collector, len(e.pages))
	err := e.forEach(ctx, len(e.pages), func(i int) error {
		bag := diagnostics.NewCollector()
		page := e.pages[i]
		document.WalkRefs(page.Blocks, func(ref *document.Ref, module string) {
			e.resolveRef(page, module, ref, bag)
		})
		bags[i] = bag
		return nil
	})
	if err != nil {
		return e.finish(StageResolved, started, err)
	}
	for _, bag := range bags {
		e.diags.Merge(bag)
	}
	return e.finish(StageResolved, started, nil)
}

func (e *Engine) resolveRef(page *document.Page, module string, ref *document.Ref, bag *diagnostics.Collector) {
	ref.Target = nil
	if ref.Invalid != "" {
		bag.Errorf(diagnostics.KindUnresolvedRef, page.ID, ref.SourceLine,
			"reference %s cannot be resolved: %s", ref.Text, ref.Invalid)
		return
	}

	if anchor, ok := e.registry.Lookup(ref.Key); ok {
		ref.Target = anchor.Target()
		return
	}

	if ref.Kind == document.RefSymbol && ref.Spec != nil {
		candidates := e.symbolCandidates(*ref.Spec, module)
		switch {
		case len(candidates) == 1:
			ref.Target = candidates[0].Target()
			return
		case len(candidates) > 1:
			names := make([]string, 0, len(candidates))
			for _, c := range candidates {
				names = append(names, c.Title)
			}
			if e.cfg.StrictRefs {
				bag.Errorf(diagnostics.KindAmbiguousRef, page.ID, ref.SourceLine,
					"reference %s matches %d symbols: %s", ref.Text, len(candidates), strings.Join(names, ", "))
				return
			}
			bag.Warnf(diagnostics.KindAmbiguousRef, page.ID, ref.SourceLine,
				"reference %s matches %d symbols, linking the first: %s", ref.Text, len(candidates), strings.Join(names, ", "))
			ref.Target = candidates[0].Target()
			return
		}
	}

	bag.Errorf(diagnostics.KindUnresolvedRef, page.ID, ref.SourceLine,
		"reference %s has no matching anchor %s", ref.Text, ref.Key)
}

// symbolCandidates finds symbol anchors for a spec whose exact identity is
// not registered: same qualified or bare name, same signature when one was
// written, preferring symbols of the current module.
func (e *Engine) symbolCandidates(spec document.TargetSpec, module string) []document.Anchor {
	var matched []document.Anchor
	for _, a := range e.registry.SymbolCandidates(spec.Name) {
		if spec.HasSignature() && !strings.HasSuffix(a.Key.ID, spec.Signature) {
			continue
		}
		matched = append(matched, a)
	}
	if len(matched) < 2 || module == "" {
		return matched
	}
	var local []document.Anchor
	for _, a := range matched {
		if a.Symbol != nil && a.Symbol.Module == module {
			local = append(local, a)
		}
	}
	if len(local) > 0 {
		return local
	}
	return matched
}

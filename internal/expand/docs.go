package expand

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/anchors"
	"github.com/goliatone/go-refdocs/internal/markdown"
	"github.com/goliatone/go-refdocs/internal/symbols"
)

// ExpandDocs registers heading anchors and splices docs directives, page by
// page and block by block. It is the only stage that writes to the registry,
// which is frozen when it returns.
func (e *Engine) ExpandDocs(ctx context.Context) error {
	if err := e.enter(StageParsed, StageDocsExpanded); err != nil {
		return err
	}
	started := time.Now()

	for pi, page := range e.pages {
		if err := ctx.Err(); err != nil {
			return e.finish(StageDocsExpanded, started, err)
		}
		for bi, block := range page.Blocks {
			switch b := block.(type) {
			case *document.Heading:
				e.registerHeading(pi, bi, b)
			case *document.Directive:
				switch b.Kind {
				case document.DirectiveDocs:
					expanded, err := e.expandDocs(ctx, pi, bi, b)
					if err != nil {
						return e.finish(StageDocsExpanded, started, err)
					}
					page.Blocks[bi] = expanded
				case document.DirectiveMeta:
					page.Blocks[bi] = &document.ResolvedContent{Kind: b.Kind, SourceLine: b.SourceLine}
				}
			}
		}
	}

	e.registry.Freeze()
	return e.finish(StageDocsExpanded, started, nil)
}

func (e *Engine) registerHeading(pi, bi int, h *document.Heading) {
	if h.Duplicate || h.Slug == "" {
		return
	}
	page := e.pages[pi]
	anchor := document.Anchor{
		Key:       document.HeadingKey(h.Slug),
		Page:      page.ID,
		PageIndex: pi,
		Position:  document.Position{Block: bi},
		Title:     h.Text,
		Level:     h.Level,
	}
	if _, taken := e.registry.Lookup(anchor.Key); !taken {
		anchor.Fragment = e.fragment(pi, h.Slug)
	}
	existing, err := e.registry.Register(anchor)
	if err == nil {
		return
	}
	h.Duplicate = true
	if errors.Is(err, anchors.ErrDuplicateAnchor) {
		e.diags.Errorf(diagnostics.KindDuplicateAnchor, page.ID, h.SourceLine,
			"heading %q repeats anchor #%s already defined in %s:%s",
			h.Text, h.Slug, existing.Page, lineOf(e.pages[existing.PageIndex], existing.Position))
	}
}

func (e *Engine) expandDocs(ctx context.Context, pi, bi int, d *document.Directive) (*document.ResolvedContent, error) {
	page := e.pages[pi]
	out := &document.ResolvedContent{Kind: document.DirectiveDocs, SourceLine: d.SourceLine}

	for _, target := range d.Targets {
		matches, err := e.resolver.Resolve(ctx, target, d.Module)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			e.diags.Errorf(diagnostics.KindNoMatchingSymbol, page.ID, target.SourceLine,
				"no symbol matches %q in %s", target.Identity(), scopeLabel(e.resolver.AllowedModules(d.Module), target))
			continue
		}

		for _, sym := range matches {
			identity := symbols.Identity(sym)
			anchor := document.Anchor{
				Key:       document.SymbolKey(identity),
				Page:      page.ID,
				PageIndex: pi,
				Position:  document.Position{Block: bi, Entry: len(out.Blocks)},
				Title:     identity,
				Symbol:    &sym,
			}
			if _, taken := e.registry.Lookup(anchor.Key); !taken {
				anchor.Fragment = e.fragment(pi, document.SymbolFragment(identity))
			}
			existing, err := e.registry.Register(anchor)
			if errors.Is(err, anchors.ErrDuplicateAnchor) {
				e.diags.Errorf(diagnostics.KindDuplicateAnchor, page.ID, target.SourceLine,
					"symbol %s is already documented in %s; entry not spliced", identity, existing.Page)
				continue
			}
			if err != nil {
				return nil, err
			}

			refs := markdown.ScanRefs(sym.Doc, target.SourceLine)
			for _, ref := range refs {
				ref.SourceLine = target.SourceLine
			}
			out.Blocks = append(out.Blocks, &document.ResolvedContent{
				Kind:   document.DirectiveDocs,
				Symbol: &sym,
				Anchor: anchor.Fragment,
				Blocks: []document.Block{&document.Markdown{
					Text:       sym.Doc,
					Refs:       refs,
					Module:     d.Module,
					SourceLine: target.SourceLine,
				}},
				SourceLine: target.SourceLine,
			})
		}
	}
	return out, nil
}

// fragment reserves a page-unique fragment based on want.
func (e *Engine) fragment(pi int, want string) string {
	used := e.fragments[pi]
	n := used[want]
	used[want] = n + 1
	if n == 0 {
		return want
	}
	for {
		candidate := fmt.Sprintf("%s-%d", want, n)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

func scopeLabel(modules []string, target document.TargetSpec) string {
	if q := target.Qualifier(); q != "" {
		return "module " + q
	}
	if len(modules) == 0 {
		return "any module"
	}
	return "modules [" + strings.Join(modules, ", ") + "]"
}

func lineOf(page *document.Page, pos document.Position) string {
	if page == nil || pos.Block < 0 || pos.Block >= len(page.Blocks) {
		return "?"
	}
	return fmt.Sprintf("%d", page.Blocks[pos.Block].Line())
}

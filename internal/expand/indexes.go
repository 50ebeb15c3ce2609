package expand

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
)

// ExpandIndexes replaces index and contents directives with generated
// lists. The registry is frozen, so pages are expanded concurrently.
func (e *Engine) ExpandIndexes(ctx context.Context) error {
	if err := e.enter(StageDocsExpanded, StageIndexesExpanded); err != nil {
		return err
	}
	started := time.Now()

	bags := make([]*diagnostics.Collector, len(e.pages))
	err := e.forEach(ctx, len(e.pages), func(i int) error {
		bag := diagnostics.NewCollector()
		e.expandPageIndexes(e.pages[i], bag)
		bags[i] = bag
		return nil
	})
	if err != nil {
		return e.finish(StageIndexesExpanded, started, err)
	}
	for _, bag := range bags {
		e.diags.Merge(bag)
	}
	return e.finish(StageIndexesExpanded, started, nil)
}

func (e *Engine) expandPageIndexes(page *document.Page, bag *diagnostics.Collector) {
	for bi, block := range page.Blocks {
		d, ok := block.(*document.Directive)
		if !ok {
			continue
		}
		switch d.Kind {
		case document.DirectiveContents:
			page.Blocks[bi] = e.contents(page, d, bag)
		case document.DirectiveIndex:
			page.Blocks[bi] = e.index(page, d, bag)
		}
	}
}

func (e *Engine) contents(page *document.Page, d *document.Directive, bag *diagnostics.Collector) *document.ResolvedContent {
	pages := e.selectPages(page, d, bag)
	depth := d.Settings.ContentsDepth()
	list := e.registry.Anchors(func(a document.Anchor) bool {
		return a.Key.Origin == document.OriginHeading && a.Level <= depth && pages.has(a.Page)
	})

	minLevel := 0
	for _, a := range list {
		if minLevel == 0 || a.Level < minLevel {
			minLevel = a.Level
		}
	}

	var gen listBuilder
	for _, a := range list {
		gen.item(a.Level-minLevel, escapeLabel(a.Title), a.Key, document.RefHeading, d.SourceLine)
	}
	return gen.content(d)
}

func (e *Engine) index(page *document.Page, d *document.Directive, bag *diagnostics.Collector) *document.ResolvedContent {
	pages := e.selectPages(page, d, bag)
	modules := d.Settings.Modules
	list := e.registry.Anchors(func(a document.Anchor) bool {
		if a.Key.Origin != document.OriginSymbol || !pages.has(a.Page) {
			return false
		}
		return len(modules) == 0 || (a.Symbol != nil && inModules(a.Symbol.Module, modules))
	})

	var gen listBuilder
	for _, a := range list {
		gen.item(0, "`"+a.Title+"`", a.Key, document.RefSymbol, d.SourceLine)
	}
	return gen.content(d)
}

type pageSet map[string]struct{}

// has reports membership; a nil set holds every page.
func (s pageSet) has(id string) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}

// selectPages resolves a Pages setting. Entries are looked up relative to
// the directive's page first, then from the content root.
func (e *Engine) selectPages(page *document.Page, d *document.Directive, bag *diagnostics.Collector) pageSet {
	if len(d.Settings.Pages) == 0 {
		return nil
	}
	set := make(pageSet, len(d.Settings.Pages))
	dir := path.Dir(page.ID)
	for _, entry := range d.Settings.Pages {
		id, ok := e.lookupPage(dir, entry)
		if !ok {
			bag.Warnf(diagnostics.KindUnresolvedRef, page.ID, d.SourceLine,
				"%s Pages entry %q does not match any page in the build", d.Kind, entry)
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (e *Engine) lookupPage(dir, entry string) (string, bool) {
	entry = strings.TrimSpace(entry)
	candidates := []string{path.Clean(path.Join(dir, entry)), strings.TrimPrefix(path.Clean(entry), "/")}
	for _, c := range candidates {
		if _, ok := e.pageIndex[c]; ok {
			return c, true
		}
	}
	return "", false
}

func inModules(module string, modules []string) bool {
	for _, m := range modules {
		if module == m || strings.HasPrefix(module, m+".") {
			return true
		}
	}
	return false
}

// listBuilder writes a markdown bullet list whose links are pre-keyed refs.
type listBuilder struct {
	text strings.Builder
	refs []*document.Ref
}

func (b *listBuilder) item(indent int, label string, key document.AnchorKey, kind document.RefKind, line int) {
	b.text.WriteString(strings.Repeat("  ", indent))
	b.text.WriteString("- ")
	start := b.text.Len()
	b.text.WriteString("[" + label + "](@ref)")
	b.refs = append(b.refs, &document.Ref{
		Text:       label,
		Start:      start,
		End:        b.text.Len(),
		Kind:       kind,
		Key:        key,
		SourceLine: line,
	})
	b.text.WriteByte('\n')
}

func (b *listBuilder) content(d *document.Directive) *document.ResolvedContent {
	out := &document.ResolvedContent{Kind: d.Kind, SourceLine: d.SourceLine}
	if len(b.refs) == 0 {
		return out
	}
	out.Blocks = []document.Block{&document.Markdown{
		Text:       b.text.String(),
		Refs:       b.refs,
		Module:     d.Module,
		SourceLine: d.SourceLine,
	}}
	return out
}

func escapeLabel(title string) string {
	r := strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)
	return r.Replace(title)
}

package directive

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/markdown"
)

// Options configure a Parser.
type Options struct {
	// DefaultModule is the module context of pages whose front matter does
	// not set one.
	DefaultModule string
	// Slugs normalises heading titles; nil uses document.DefaultSlugNormalizer.
	Slugs document.SlugNormalizer
}

// Parser builds pages from sources. It holds no per-page state and may be
// shared by concurrent callers.
type Parser struct {
	opts Options
}

// NewParser returns a parser with opts.
func NewParser(opts Options) *Parser {
	if opts.Slugs == nil {
		opts.Slugs = document.DefaultSlugNormalizer()
	}
	return &Parser{opts: opts}
}

// KindOf maps a fence info string to a directive kind. Both the @docs and
// the bare docs forms are accepted.
func KindOf(info string) (document.DirectiveKind, bool) {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", false
	}
	switch kind := document.DirectiveKind(strings.TrimPrefix(fields[0], "@")); kind {
	case document.DirectiveDocs, document.DirectiveIndex, document.DirectiveContents, document.DirectiveMeta:
		return kind, true
	}
	return "", false
}

// Parse converts src into a page, reporting problems to diags.
func (p *Parser) Parse(src *markdown.Source, diags diagnostics.Reporter) *document.Page {
	module := strings.TrimSpace(src.FrontMatter.CurrentModule)
	if module == "" {
		module = p.opts.DefaultModule
	}

	page := &document.Page{
		ID:     src.ID,
		Title:  src.FrontMatter.Title,
		Module: module,
	}

	st := &pageState{
		parser: p,
		page:   page,
		src:    src,
		diags:  diags,
		module: module,
		slugs:  make(map[string]int),
	}
	st.run()
	return page
}

type pageState struct {
	parser *Parser
	page   *document.Page
	src    *markdown.Source
	diags  diagnostics.Reporter
	module string
	slugs  map[string]int
}

func (s *pageState) run() {
	body := s.src.Body
	cursor := 0
	for _, el := range markdown.Outline(body) {
		var block document.Block
		switch el.Kind {
		case markdown.ElementHeading:
			block = s.heading(el)
		case markdown.ElementFence:
			kind, ok := KindOf(el.Info)
			if !ok {
				continue
			}
			block = s.directive(kind, el)
		}
		s.text(cursor, el.Start)
		s.page.Blocks = append(s.page.Blocks, block)
		cursor = el.End
	}
	s.text(cursor, len(body))
}

func (s *pageState) line(bodyLine int) int {
	return s.src.LineOffset + bodyLine
}

func (s *pageState) text(start, end int) {
	if end <= start {
		return
	}
	chunk := string(s.src.Body[start:end])
	line := s.line(markdown.LineOf(s.src.Body, start))
	block := &document.Markdown{
		Text:       chunk,
		Module:     s.module,
		SourceLine: line,
	}
	if strings.TrimSpace(chunk) != "" {
		block.Refs = markdown.ScanRefs(chunk, line)
	}
	s.page.Blocks = append(s.page.Blocks, block)
}

func (s *pageState) heading(el markdown.Element) *document.Heading {
	line := s.line(el.Line)
	plain := markdown.HeadingText(el.Title)
	h := &document.Heading{
		Level:      el.Level,
		Title:      el.Title,
		Text:       plain,
		Refs:       markdown.ScanRefs(el.Title, line),
		Module:     s.module,
		Slug:       document.SlugifyWith(s.parser.opts.Slugs, plain),
		SourceLine: line,
	}
	if s.page.Title == "" && h.Level == 1 {
		s.page.Title = h.Text
	}
	if h.Slug == "" {
		return h
	}
	if first, ok := s.slugs[h.Slug]; ok {
		h.Duplicate = true
		s.diags.Report(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Kind:     diagnostics.KindDuplicateAnchor,
			Page:     s.page.ID,
			Line:     line,
			Detail:   fmt.Sprintf("heading %q repeats anchor #%s already defined on line %d", h.Text, h.Slug, first),
		})
		return h
	}
	s.slugs[h.Slug] = line
	return h
}

func (s *pageState) directive(kind document.DirectiveKind, el markdown.Element) *document.Directive {
	d := &document.Directive{
		Kind:       kind,
		Raw:        el.Content,
		Module:     s.module,
		SourceLine: s.line(el.Line),
	}

	for i, raw := range strings.Split(el.Content, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		lineNo := d.SourceLine + 1 + i
		if kind == document.DirectiveDocs {
			s.target(d, raw, lineNo)
			continue
		}
		s.setting(d, text, lineNo)
	}

	if kind == document.DirectiveMeta && d.Settings.CurrentModule != "" {
		s.module = d.Settings.CurrentModule
	}
	return d
}

func (s *pageState) target(d *document.Directive, raw string, line int) {
	spec, err := document.ParseTargetSpec(raw)
	if err != nil {
		s.errorf(line, "docs target %q skipped: %v", strings.TrimSpace(raw), err)
		return
	}
	spec.SourceLine = line
	d.Targets = append(d.Targets, spec)
}

func (s *pageState) errorf(line int, format string, args ...any) {
	s.report(diagnostics.SeverityError, line, format, args...)
}

func (s *pageState) warnf(line int, format string, args ...any) {
	s.report(diagnostics.SeverityWarning, line, format, args...)
}

func (s *pageState) report(sev diagnostics.Severity, line int, format string, args ...any) {
	s.diags.Report(diagnostics.Diagnostic{
		Severity: sev,
		Kind:     diagnostics.KindParseError,
		Page:     s.page.ID,
		Line:     line,
		Detail:   fmt.Sprintf(format, args...),
	})
}

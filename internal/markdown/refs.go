package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-refdocs/document"
)

// RefDestination is the link destination that marks a cross reference.
const RefDestination = "@ref"

// ScanRefs finds every [text](@ref) link in src, including reference style
// links whose definition points at @ref. Offsets on the returned refs are
// relative to src; line numbers are offset by baseLine, the source line src
// starts on. Links inside code spans and code blocks are not links and are
// never returned. A link whose label cannot be located in src is returned
// with negative offsets and Invalid set so it is reported but never rewritten.
func ScanRefs(src string, baseLine int) []*document.Ref {
	if !strings.Contains(src, RefDestination) {
		return nil
	}
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var refs []*document.Ref
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := node.(*ast.Link)
		if !ok || string(link.Destination) != RefDestination {
			return ast.WalkContinue, nil
		}
		ref := refFromLink(link, source)
		offset := ref.Start
		if offset < 0 {
			offset = blockOffset(link)
		}
		ref.SourceLine = baseLine + LineOf(source, offset) - 1
		refs = append(refs, ref)
		return ast.WalkSkipChildren, nil
	})
	return refs
}

func refFromLink(link *ast.Link, source []byte) *document.Ref {
	open, closeLabel, end, reason := linkSpan(link, source)
	if reason != "" {
		return &document.Ref{
			Text:    plainText(link, source),
			Start:   -1,
			End:     -1,
			Kind:    document.RefHeading,
			Invalid: reason,
		}
	}

	ref := &document.Ref{
		Text:  string(source[open+1 : closeLabel]),
		Start: open,
		End:   end + 1,
	}

	target := strings.TrimSpace(string(link.Title))
	symbol := false
	if target != "" {
		if len(target) > 1 && strings.HasPrefix(target, "`") && strings.HasSuffix(target, "`") {
			target = strings.Trim(target, "`")
			symbol = true
		}
	} else if code, ok := soleCodeSpan(link); ok {
		target = codeText(code, source)
		symbol = true
	} else {
		target = plainText(link, source)
	}
	KeyRef(ref, target, symbol)
	return ref
}

// linkSpan locates the source bytes of link: the '[' opening its label, the
// ']' closing it and the last byte of the link. Only markup may sit between
// the brackets and the label text, and an inline link must be followed by
// its @ref destination, so a span can never reach into a neighbouring link.
func linkSpan(link *ast.Link, source []byte) (open, closeLabel, end int, reason string) {
	lo, hi, ok := textBounds(link)
	if !ok {
		return 0, 0, 0, "empty reference text"
	}
	open = lo - 1
	for open >= 0 && isLabelMarkup(source[open]) {
		open--
	}
	closeLabel = hi
	for closeLabel < len(source) && isLabelMarkup(source[closeLabel]) {
		closeLabel++
	}
	if open < 0 || source[open] != '[' || closeLabel >= len(source) || source[closeLabel] != ']' {
		return 0, 0, 0, "cannot locate reference text in source"
	}

	next := closeLabel + 1
	switch {
	case next < len(source) && source[next] == '(':
		dest := next + 1
		for dest < len(source) && isSpace(source[dest]) {
			dest++
		}
		rest := source[dest:]
		if !bytes.HasPrefix(rest, []byte(RefDestination)) && !bytes.HasPrefix(rest, []byte("<"+RefDestination+">")) {
			return 0, 0, 0, "cannot locate reference destination in source"
		}
		end = closingParen(source, dest)
		if end < 0 {
			return 0, 0, 0, "unterminated reference destination"
		}
	case next < len(source) && source[next] == '[':
		rel := bytes.IndexByte(source[next:], ']')
		if rel < 0 {
			return 0, 0, 0, "unterminated reference label"
		}
		end = next + rel
	default:
		end = closeLabel
	}
	return open, closeLabel, end, ""
}

func isLabelMarkup(c byte) bool {
	switch c {
	case '*', '_', '~', '`', '\\':
		return true
	}
	return isSpace(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// blockOffset returns the first source offset of the block holding node.
func blockOffset(node ast.Node) int {
	for n := node; n != nil; n = n.Parent() {
		if n.Type() != ast.TypeBlock {
			continue
		}
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start
		}
	}
	return 0
}

// KeyRef fills the kind and lookup key of ref from its target text.
func KeyRef(ref *document.Ref, target string, symbol bool) {
	if symbol {
		ref.Kind = document.RefSymbol
		spec, err := document.ParseTargetSpec(target)
		if err != nil {
			ref.Invalid = err.Error()
			return
		}
		ref.Spec = &spec
		ref.Key = document.SymbolKey(spec.Identity())
		return
	}
	ref.Kind = document.RefHeading
	slug := document.Slugify(target)
	if slug == "" {
		ref.Invalid = "empty heading reference"
		return
	}
	ref.Key = document.HeadingKey(slug)
}

func textBounds(node ast.Node) (int, int, bool) {
	lo, hi := -1, -1
	widen := func(seg text.Segment) {
		if lo < 0 || seg.Start < lo {
			lo = seg.Start
		}
		if seg.Stop > hi {
			hi = seg.Stop
		}
	}
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			widen(t.Segment)
		case *ast.RawHTML:
			for i := 0; i < t.Segments.Len(); i++ {
				widen(t.Segments.At(i))
			}
		}
		return ast.WalkContinue, nil
	})
	return lo, hi, lo >= 0 && hi > lo
}

// closingParen returns the index of the ')' closing a link destination that
// starts at from, skipping quoted titles and nested parentheses.
func closingParen(source []byte, from int) int {
	depth := 0
	var quote byte
	for i := from; i < len(source); i++ {
		c := source[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func soleCodeSpan(link *ast.Link) (*ast.CodeSpan, bool) {
	child := link.FirstChild()
	if child == nil || child.NextSibling() != nil {
		return nil, false
	}
	code, ok := child.(*ast.CodeSpan)
	return code, ok
}

func codeText(code *ast.CodeSpan, source []byte) string {
	var b strings.Builder
	for c := code.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(b.String())
}

func plainText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// HeadingText reduces a heading title to plain text, dropping emphasis, code
// markers, link destinations and raw HTML.
func HeadingText(title string) string {
	title = strings.TrimSpace(title)
	if !strings.ContainsAny(title, "[]*_`<\\&") {
		return title
	}
	source := []byte("# " + title)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	heading := doc.FirstChild()
	if heading == nil {
		return title
	}
	return plainText(heading, source)
}

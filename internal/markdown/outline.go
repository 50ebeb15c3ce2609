package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ElementKind tags an outline element.
type ElementKind int

const (
	ElementHeading ElementKind = iota
	ElementFence
)

// Element is a top-level heading or fenced code block located by whole
// source lines. Start and End are byte offsets into the parsed body, with End
// just past the element's last line terminator.
type Element struct {
	Kind  ElementKind
	Start int
	End   int
	// Line is the 1-based line of Start within the body.
	Line int
	// Heading fields.
	Level int
	Title string
	// Fence fields. Info is the full info string, Content the raw lines
	// between the fences.
	Info    string
	Content string
}

// Outline lists the top-level headings and fenced code blocks of body in
// source order. Everything between elements is ordinary markdown.
func Outline(body []byte) []Element {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))
	lines := newLineIndex(body)

	var out []Element
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if el, ok := headingElement(n, body, lines); ok {
				out = append(out, el)
			}
		case *ast.FencedCodeBlock:
			if el, ok := fenceElement(n, body, lines); ok {
				out = append(out, el)
			}
		}
	}
	return out
}

func headingElement(n *ast.Heading, body []byte, lines lineIndex) (Element, bool) {
	segs := n.Lines()
	if segs.Len() == 0 {
		return Element{}, false
	}
	first := segs.At(0)
	last := segs.At(segs.Len() - 1)

	start := lines.lineStart(first.Start)
	end := lines.lineEnd(last.Stop)

	// Setext headings own the underline that follows their text.
	if !isATX(body[start:end]) && end < len(body) {
		next := lines.nextLine(end)
		if isSetextUnderline(body[end:next]) {
			end = next
		}
	}

	parts := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(body))))
	}

	return Element{
		Kind:  ElementHeading,
		Start: start,
		End:   end,
		Line:  lines.lineOf(start),
		Level: n.Level,
		Title: strings.Join(parts, " "),
	}, true
}

func fenceElement(n *ast.FencedCodeBlock, body []byte, lines lineIndex) (Element, bool) {
	if n.Info == nil {
		return Element{}, false
	}
	start := lines.lineStart(n.Info.Segment.Start)
	openEnd := lines.lineEnd(n.Info.Segment.Stop)
	opening := body[start:openEnd]

	var content strings.Builder
	end := openEnd
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		content.Write(seg.Value(body))
		end = lines.lineEnd(seg.Stop)
	}
	if end < len(body) {
		next := lines.nextLine(end)
		if isClosingFence(opening, body[end:next]) {
			end = next
		}
	}

	return Element{
		Kind:    ElementFence,
		Start:   start,
		End:     end,
		Line:    lines.lineOf(start),
		Info:    strings.TrimSpace(string(n.Info.Segment.Value(body))),
		Content: content.String(),
	}, true
}

func isATX(line []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	return len(line)-len(trimmed) <= 3 && len(trimmed) > 0 && trimmed[0] == '#'
}

func isSetextUnderline(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	c := trimmed[0]
	if c != '=' && c != '-' {
		return false
	}
	return len(bytes.Trim(trimmed, string(c))) == 0
}

func fenceOf(line []byte) (byte, int) {
	trimmed := bytes.TrimLeft(line, " ")
	if len(trimmed) == 0 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return 0, 0
	}
	c := trimmed[0]
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	return c, n
}

func isClosingFence(opening, line []byte) bool {
	oc, on := fenceOf(opening)
	c, n := fenceOf(line)
	if oc == 0 || c != oc || n < on {
		return false
	}
	rest := bytes.TrimLeft(line, " ")[n:]
	return len(bytes.TrimSpace(rest)) == 0
}

// lineIndex maps byte offsets to lines.
type lineIndex struct {
	starts []int
	size   int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, size: len(src)}
}

// lineOf returns the 1-based line holding offset.
func (l lineIndex) lineOf(offset int) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
}

func (l lineIndex) lineStart(offset int) int {
	return l.starts[l.lineOf(offset)-1]
}

// lineEnd returns the offset just past the terminator of the line holding
// offset. An offset sitting right after a terminator belongs to the line
// that terminator ends.
func (l lineIndex) lineEnd(offset int) int {
	if offset > 0 && l.isLineBoundary(offset) {
		return offset
	}
	return l.nextLine(offset)
}

// nextLine returns the start of the line after the one holding offset.
func (l lineIndex) nextLine(offset int) int {
	idx := l.lineOf(offset)
	if idx < len(l.starts) {
		return l.starts[idx]
	}
	return l.size
}

func (l lineIndex) isLineBoundary(offset int) bool {
	if offset == l.size {
		return true
	}
	i := sort.SearchInts(l.starts, offset)
	return i < len(l.starts) && l.starts[i] == offset
}

// LineOf returns the 1-based line number of offset within src.
func LineOf(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}

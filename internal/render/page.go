package render

import (
	"fmt"
	"html"
	"path"
	"strings"

	"github.com/goliatone/go-refdocs/document"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a configured format name. Empty means markdown.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "md", string(FormatMarkdown):
		return FormatMarkdown, nil
	case string(FormatHTML):
		return FormatHTML, nil
	}
	return "", fmt.Errorf("render: unknown format %q", value)
}

// Extension is the file extension pages get in this format.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

// headingAnchors maps the heading keys a page owns to their fragments.
type headingAnchors map[string]map[document.AnchorKey]string

func indexHeadings(anchors []document.Anchor) headingAnchors {
	out := headingAnchors{}
	for _, a := range anchors {
		if a.Key.Origin != document.OriginHeading {
			continue
		}
		if out[a.Page] == nil {
			out[a.Page] = map[document.AnchorKey]string{}
		}
		out[a.Page][a.Key] = a.Fragment
	}
	return out
}

// pageWriter renders one page as markdown.
type pageWriter struct {
	page     *document.Page
	headings map[document.AnchorKey]string
	format   Format
	out      strings.Builder
}

// Markdown renders page with resolved links rewritten to relative paths.
// Inert links are written as their label text.
func Markdown(page *document.Page, anchors []document.Anchor, format Format) string {
	w := &pageWriter{
		page:     page,
		headings: indexHeadings(anchors)[page.ID],
		format:   format,
	}
	w.blocks(page.Blocks)
	return w.out.String()
}

func (w *pageWriter) blocks(blocks []document.Block) {
	for _, block := range blocks {
		switch b := block.(type) {
		case *document.Markdown:
			w.markdown(b)
		case *document.Heading:
			w.heading(b)
		case *document.Directive:
			fmt.Fprintf(&w.out, "```@%s\n%s```\n", b.Kind, b.Raw)
		case *document.ResolvedContent:
			w.resolved(b)
		}
	}
}

func (w *pageWriter) heading(h *document.Heading) {
	if frag, ok := w.headings[document.HeadingKey(h.Slug)]; ok && !h.Duplicate {
		w.anchor(frag)
	}
	fmt.Fprintf(&w.out, "%s ", strings.Repeat("#", h.Level))
	w.refText(h.Title, h.Refs)
	w.out.WriteByte('\n')
}

func (w *pageWriter) resolved(rc *document.ResolvedContent) {
	if rc.Symbol != nil {
		if rc.Anchor != "" {
			w.anchor(rc.Anchor)
		}
		fmt.Fprintf(&w.out, "**`%s`**\n\n", displayName(rc))
		w.blocks(rc.Blocks)
		w.ensureBlankLine()
		return
	}
	w.blocks(rc.Blocks)
}

func displayName(rc *document.ResolvedContent) string {
	name := rc.Symbol.QualifiedName()
	if sig := strings.Join(strings.Fields(rc.Symbol.Signature), " "); sig != "" {
		name += sig
	}
	return name
}

func (w *pageWriter) markdown(md *document.Markdown) {
	w.refText(md.Text, md.Refs)
	if md.Text != "" && !strings.HasSuffix(md.Text, "\n") {
		w.out.WriteByte('\n')
	}
}

// refText writes text with each located @ref span replaced by a link to its
// target, or by its bare label when it did not resolve.
func (w *pageWriter) refText(text string, refs []*document.Ref) {
	cursor := 0
	for _, ref := range refs {
		if ref.Start < cursor || ref.End > len(text) {
			continue
		}
		w.out.WriteString(text[cursor:ref.Start])
		if ref.Resolved() {
			fmt.Fprintf(&w.out, "[%s](%s)", ref.Text, w.href(ref.Target))
		} else {
			w.out.WriteString(ref.Text)
		}
		cursor = ref.End
	}
	w.out.WriteString(text[cursor:])
}

func (w *pageWriter) anchor(fragment string) {
	fmt.Fprintf(&w.out, "<a id=\"%s\"></a>\n", html.EscapeString(fragment))
}

func (w *pageWriter) ensureBlankLine() {
	s := w.out.String()
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		w.out.WriteByte('\n')
	default:
		w.out.WriteString("\n\n")
	}
}

func (w *pageWriter) href(target *document.Target) string {
	if target.Page == w.page.ID {
		return "#" + target.Fragment
	}
	return RelativeLink(w.page.ID, OutputPath(target.Page, w.format)) + "#" + target.Fragment
}

// OutputPath maps a page id to its output file name.
func OutputPath(pageID string, format Format) string {
	ext := path.Ext(pageID)
	return strings.TrimSuffix(pageID, ext) + format.Extension()
}

// RelativeLink returns the path of to as seen from the directory of from.
// Both are slash separated and relative to the same root.
func RelativeLink(from, to string) string {
	fromDir := strings.Split(path.Dir(path.Clean(from)), "/")
	toParts := strings.Split(path.Clean(to), "/")
	if len(fromDir) == 1 && fromDir[0] == "." {
		fromDir = nil
	}

	common := 0
	for common < len(fromDir) && common < len(toParts)-1 && fromDir[common] == toParts[common] {
		common++
	}
	parts := make([]string, 0, len(fromDir)-common+len(toParts)-common)
	for range fromDir[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return strings.Join(parts, "/")
}

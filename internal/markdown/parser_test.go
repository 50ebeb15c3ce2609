package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
	"github.com/goliatone/go-refdocs/pkg/testsupport"
)

func TestParseFrontMatter(t *testing.T) {
	data := testsupport.LoadFixture(t, "testdata/basic.md")

	fm, body, offset, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Sample Page" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.CurrentModule != "Base" {
		t.Fatalf("FrontMatter CurrentModule mismatch, got %q", fm.CurrentModule)
	}
	if offset != 4 {
		t.Fatalf("expected 4 front matter lines, got %d", offset)
	}
	if !strings.HasPrefix(string(body), "# Sample Page") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	fm, body, offset, err := ParseFrontMatter([]byte("# Title\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || offset != 0 || string(body) != "# Title\n" {
		t.Fatalf("unexpected result: %#v %q %d", fm, body, offset)
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"b.md":         {Data: []byte("# B\n")},
		"a.md":         {Data: []byte("# A\n")},
		"notes.txt":    {Data: []byte("skip")},
		"guide/c.md":   {Data: []byte("# C\n")},
		"guide/d.json": {Data: []byte("{}")},
	}

	flat := NewLoader(fsys, LoaderConfig{})
	sources, err := flat.LoadDirectory(context.Background(), ".")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if got := sourceIDs(sources); got != "a.md,b.md" {
		t.Fatalf("expected sorted top-level pages, got %s", got)
	}

	deep := NewLoader(fsys, LoaderConfig{Recursive: true})
	sources, err = deep.LoadDirectory(context.Background(), ".")
	if err != nil {
		t.Fatalf("LoadDirectory recursive: %v", err)
	}
	if got := sourceIDs(sources); got != "a.md,b.md,guide/c.md" {
		t.Fatalf("expected nested pages, got %s", got)
	}
}

func TestLoaderLoadPagesKeepsOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("# A\n")},
		"b.md": {Data: []byte("# B\n")},
	}
	loader := NewLoader(fsys, LoaderConfig{})

	sources, err := loader.LoadPages(context.Background(), []string{"./b.md", "a.md"})
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if got := sourceIDs(sources); got != "b.md,a.md" {
		t.Fatalf("expected configured order, got %s", got)
	}

	if _, err := loader.LoadPages(context.Background(), []string{"missing.md"}); err == nil {
		t.Fatalf("expected error for missing page")
	}
	if _, err := loader.LoadPages(context.Background(), []string{"a.md", "a.md"}); err == nil {
		t.Fatalf("expected error for duplicate page")
	}
}

func TestOutline(t *testing.T) {
	body := "Intro text\n\n# Title\n\nPara\n\nSub Title\n---------\n\n```@docs\nlength\nBase.push!\n```\n\n```go\nx := 1\n```\n\n- item\n\n  # nested\n"
	elements := Outline([]byte(body))
	if len(elements) != 4 {
		t.Fatalf("expected 4 elements, got %d: %#v", len(elements), elements)
	}

	h1 := elements[0]
	if h1.Kind != ElementHeading || h1.Level != 1 || h1.Title != "Title" || h1.Line != 3 {
		t.Fatalf("unexpected heading: %#v", h1)
	}
	if body[h1.Start:h1.End] != "# Title\n" {
		t.Fatalf("unexpected heading range %q", body[h1.Start:h1.End])
	}

	h2 := elements[1]
	if h2.Level != 2 || h2.Title != "Sub Title" || body[h2.Start:h2.End] != "Sub Title\n---------\n" {
		t.Fatalf("unexpected setext heading: %#v %q", h2, body[h2.Start:h2.End])
	}

	fence := elements[2]
	if fence.Kind != ElementFence || fence.Info != "@docs" || fence.Content != "length\nBase.push!\n" {
		t.Fatalf("unexpected fence: %#v", fence)
	}
	if body[fence.Start:fence.End] != "```@docs\nlength\nBase.push!\n```\n" {
		t.Fatalf("unexpected fence range %q", body[fence.Start:fence.End])
	}
	if elements[3].Info != "go" {
		t.Fatalf("expected go fence, got %#v", elements[3])
	}
}

func TestOutlineEmptyFenceWithoutTrailingNewline(t *testing.T) {
	body := "```@meta\n```"
	elements := Outline([]byte(body))
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	if elements[0].Start != 0 || elements[0].End != len(body) || elements[0].Content != "" {
		t.Fatalf("unexpected fence: %#v", elements[0])
	}
}

func TestScanRefs(t *testing.T) {
	src := "Read [Getting Started](@ref) first.\nThen [`length(x::T)`](@ref), [docs](@ref \"Install Guide\")\nand [`push!`](https://example.com) and `[Skip](@ref)`."
	refs := ScanRefs(src, 10)
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}

	heading := refs[0]
	if heading.Kind != document.RefHeading || heading.Key != document.HeadingKey("getting-started") {
		t.Fatalf("unexpected heading ref: %#v", heading)
	}
	if src[heading.Start:heading.End] != "[Getting Started](@ref)" || heading.SourceLine != 10 {
		t.Fatalf("unexpected heading span %q line %d", src[heading.Start:heading.End], heading.SourceLine)
	}

	symbol := refs[1]
	if symbol.Kind != document.RefSymbol || symbol.Key != document.SymbolKey("length(::T)") {
		t.Fatalf("unexpected symbol ref: %#v", symbol)
	}
	if symbol.Text != "`length(x::T)`" || symbol.SourceLine != 11 {
		t.Fatalf("unexpected symbol text %q line %d", symbol.Text, symbol.SourceLine)
	}

	titled := refs[2]
	if titled.Key != document.HeadingKey("install-guide") {
		t.Fatalf("expected title to act as target, got %#v", titled.Key)
	}
	if src[titled.Start:titled.End] != "[docs](@ref \"Install Guide\")" {
		t.Fatalf("unexpected titled span %q", src[titled.Start:titled.End])
	}
}

func TestScanRefsSpans(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		span    string
		text    string
		key     document.AnchorKey
		line    int
		invalid bool
	}{
		{
			name: "reference style before an unrelated link",
			src:  "See [Intro][x] and [site](http://example.com).\n\n[x]: @ref\n",
			span: "[Intro][x]",
			text: "Intro",
			key:  document.HeadingKey("intro"),
			line: 1,
		},
		{
			name: "collapsed reference",
			src:  "Read [Intro][] now.\n\n[intro]: @ref\n",
			span: "[Intro][]",
			text: "Intro",
			key:  document.HeadingKey("intro"),
			line: 1,
		},
		{
			name: "shortcut reference",
			src:  "Read [Intro] now.\n\n[Intro]: @ref\n",
			span: "[Intro]",
			text: "Intro",
			key:  document.HeadingKey("intro"),
			line: 1,
		},
		{
			name: "strong label",
			src:  "Use [**Foo**](@ref) here.",
			span: "[**Foo**](@ref)",
			text: "**Foo**",
			key:  document.HeadingKey("foo"),
			line: 1,
		},
		{
			name: "nested brackets",
			src:  "Use [see [the] guide](@ref) here.",
			span: "[see [the] guide](@ref)",
			text: "see [the] guide",
			key:  document.HeadingKey("see-the-guide"),
			line: 1,
		},
		{
			name: "heading title",
			src:  "See [Missing Thing](@ref)",
			span: "[Missing Thing](@ref)",
			text: "Missing Thing",
			key:  document.HeadingKey("missing-thing"),
			line: 1,
		},
		{
			name: "heading line",
			src:  "Intro.\n\n## About [Usage](@ref)\n",
			span: "[Usage](@ref)",
			text: "Usage",
			key:  document.HeadingKey("usage"),
			line: 3,
		},
		{
			name:    "empty label",
			src:     "Para.\n\nBroken [](@ref) link.",
			line:    3,
			invalid: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refs := ScanRefs(tc.src, 1)
			if len(refs) != 1 {
				t.Fatalf("expected 1 ref, got %d", len(refs))
			}
			ref := refs[0]
			if ref.SourceLine != tc.line {
				t.Fatalf("expected line %d, got %d", tc.line, ref.SourceLine)
			}
			if tc.invalid {
				if ref.Invalid == "" || ref.Start >= 0 || ref.End >= 0 {
					t.Fatalf("expected an unlocated invalid ref, got %#v", ref)
				}
				return
			}
			if ref.Invalid != "" {
				t.Fatalf("unexpected invalid ref: %s", ref.Invalid)
			}
			if got := tc.src[ref.Start:ref.End]; got != tc.span {
				t.Fatalf("expected span %q, got %q", tc.span, got)
			}
			if ref.Text != tc.text || ref.Key != tc.key {
				t.Fatalf("unexpected ref text %q key %v", ref.Text, ref.Key)
			}
		})
	}
}

func TestHeadingText(t *testing.T) {
	cases := map[string]string{
		"Getting Started":           "Getting Started",
		"See [Missing Thing](@ref)": "See Missing Thing",
		"The `length` **function**": "The length function",
		"  Padded  ":                "Padded",
	}
	for title, want := range cases {
		if got := HeadingText(title); got != want {
			t.Fatalf("HeadingText(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestScanRefsInvalidSymbol(t *testing.T) {
	refs := ScanRefs("[`length(::T`](@ref)", 1)
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].Invalid == "" || !refs[0].Key.IsZero() {
		t.Fatalf("expected invalid ref without key, got %#v", refs[0])
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include heading, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_SafeMode(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})
	html, err := parser.ParseWithOptions([]byte("<a id=\"x\"></a>\n\ntext"), interfaces.ParseOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if strings.Contains(string(html), "<a id=") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", html)
	}
}

func TestGoldmarkParser_UnknownExtension(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})
	_, err := parser.ParseWithOptions([]byte("text"), interfaces.ParseOptions{Extensions: []string{"mermaid"}})
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("expected ErrUnknownExtension, got %v", err)
	}
}

func TestGoldmarkParser_ReusesEngines(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})
	opts := interfaces.ParseOptions{Extensions: []string{"Table", "footnote", "table"}}
	for i := 0; i < 3; i++ {
		if _, err := parser.ParseWithOptions([]byte("| a |\n|---|\n| b |\n"), opts); err != nil {
			t.Fatalf("ParseWithOptions: %v", err)
		}
	}
	if len(parser.engines) != 1 {
		t.Fatalf("expected one cached engine, got %d", len(parser.engines))
	}
}

func sourceIDs(sources []*Source) string {
	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		ids = append(ids, src.ID)
	}
	return strings.Join(ids, ",")
}

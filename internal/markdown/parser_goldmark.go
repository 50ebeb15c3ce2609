package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// ErrUnknownExtension is returned for extension names goldmark does not ship.
var ErrUnknownExtension = errors.New("markdown: unknown goldmark extension")

// GoldmarkParser turns resolved page markdown into HTML. Engines are built
// once per distinct option set and shared between pages.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions

	mu      sync.Mutex
	engines map[string]goldmark.Markdown
}

var _ interfaces.MarkdownRenderer = (*GoldmarkParser)(nil)

// NewGoldmarkParser returns a renderer using defaults for Parse.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaults: defaults,
		engines:  make(map[string]goldmark.Markdown),
	}
}

// Parse renders markdown with the default options.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions renders markdown with opts.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	md, err := p.engine(opts)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := md.Convert(markdown, &out); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return out.Bytes(), nil
}

func (p *GoldmarkParser) engine(opts interfaces.ParseOptions) (goldmark.Markdown, error) {
	names := extensionNames(opts.Extensions)
	key := fmt.Sprintf("%s|%t|%t|%t", strings.Join(names, ","), opts.HardWraps, opts.SafeMode, opts.Sanitize)

	p.mu.Lock()
	defer p.mu.Unlock()
	if md, ok := p.engines[key]; ok {
		return md, nil
	}

	exts := make([]goldmark.Extender, 0, len(names))
	for _, name := range names {
		ext, ok := goldmarkExtensions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, name)
		}
		exts = append(exts, ext)
	}

	var rendererOpts []renderer.Option
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	// Anchor tags are emitted as raw html, so raw html must pass through
	// unless the caller asked for safe output.
	if !opts.SafeMode && !opts.Sanitize {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	// Heading ids are written by the page renderer; goldmark's automatic ids
	// stay off so there is only one slug per heading.
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	p.engines[key] = md
	return md, nil
}

var goldmarkExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// extensionNames lowercases, dedupes and sorts names; no names means gfm.
func extensionNames(names []string) []string {
	if len(names) == 0 {
		return []string{"gfm"}
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

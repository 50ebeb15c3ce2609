package document

import (
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// DirectiveKind names a fenced directive block.
type DirectiveKind string

const (
	DirectiveDocs     DirectiveKind = "docs"
	DirectiveIndex    DirectiveKind = "index"
	DirectiveContents DirectiveKind = "contents"
	DirectiveMeta     DirectiveKind = "meta"
)

// DefaultContentsDepth is the heading depth listed by a contents directive
// without a Depth setting.
const DefaultContentsDepth = 2

// Page is a single source file in build order.
type Page struct {
	// ID is the source path relative to the content root, unique in a build.
	ID string
	// Title comes from front matter or the first level-1 heading.
	Title string
	// Module is the current module context the page starts with.
	Module string
	Blocks []Block
}

// Block is one of Markdown, Heading, Directive or ResolvedContent.
type Block interface {
	// Line is the 1-based source line the block starts on. Generated blocks
	// report the line of the directive that produced them.
	Line() int
	block()
}

// Markdown is verbatim markdown text plus the @ref links found inside it.
type Markdown struct {
	Text string
	Refs []*Ref
	// Module is the current module in effect where the text appears.
	Module     string
	SourceLine int
}

// Heading is an ATX or setext heading.
type Heading struct {
	Level int
	// Title is the heading text as written, markup included.
	Title string
	// Text is Title reduced to plain text; slugs and labels derive from it.
	Text string
	// Refs are the @ref links inside Title, offsets relative to Title.
	Refs       []*Ref
	Module     string
	Slug       string
	SourceLine int
	// Duplicate marks a heading whose slug was already claimed; it carries no
	// anchor of its own.
	Duplicate bool
}

// Directive is an unexpanded directive block.
type Directive struct {
	Kind DirectiveKind
	// Raw is the fenced body exactly as written.
	Raw      string
	Settings Settings
	Targets  []TargetSpec
	// Module is the current module in effect for this directive.
	Module     string
	SourceLine int
}

// ResolvedContent replaces a Directive. Docs expansion nests one
// ResolvedContent per spliced symbol, with Symbol and Anchor set.
type ResolvedContent struct {
	Kind       DirectiveKind
	Blocks     []Block
	Symbol     *interfaces.Symbol
	Anchor     string
	SourceLine int
}

func (b *Markdown) Line() int        { return b.SourceLine }
func (b *Heading) Line() int         { return b.SourceLine }
func (b *Directive) Line() int       { return b.SourceLine }
func (b *ResolvedContent) Line() int { return b.SourceLine }

func (*Markdown) block()        {}
func (*Heading) block()         {}
func (*Directive) block()       {}
func (*ResolvedContent) block() {}

// Settings are the typed Key = value settings of a directive body.
type Settings struct {
	Pages         []string
	Depth         int
	CurrentModule string
	Modules       []string
}

// ContentsDepth returns Depth or the default.
func (s Settings) ContentsDepth() int {
	if s.Depth <= 0 {
		return DefaultContentsDepth
	}
	return s.Depth
}

// RefKind tells how a @ref link is looked up.
type RefKind int

const (
	// RefHeading links use the heading slug of their text.
	RefHeading RefKind = iota
	// RefSymbol links use the identity parsed from backticked text.
	RefSymbol
)

// Ref is an inline [text](@ref) link inside a Markdown block.
type Ref struct {
	// Text is the raw link label as written, backticks included.
	Text string
	// Start and End delimit the whole link, brackets to closing paren, as
	// byte offsets into the owning Markdown text.
	Start int
	End   int
	Kind  RefKind
	Key   AnchorKey
	// Spec is set for symbol refs whose text parsed as a target spec.
	Spec *TargetSpec
	// Invalid holds the reason a ref could not produce a key.
	Invalid    string
	SourceLine int
	// Target is nil until resolution and stays nil for inert links.
	Target *Target
}

// Resolved reports whether the ref points somewhere.
func (r *Ref) Resolved() bool { return r != nil && r.Target != nil }

// Target is a resolved link destination.
type Target struct {
	Page     string
	Fragment string
}

// Walk visits blocks depth first, descending into ResolvedContent.
func Walk(blocks []Block, fn func(Block)) {
	for _, b := range blocks {
		fn(b)
		if rc, ok := b.(*ResolvedContent); ok {
			Walk(rc.Blocks, fn)
		}
	}
}

// WalkRefs calls fn for every @ref link in the tree in document order,
// heading titles included, with the module in effect where the link appears.
func WalkRefs(blocks []Block, fn func(ref *Ref, module string)) {
	Walk(blocks, func(b Block) {
		switch b := b.(type) {
		case *Markdown:
			for _, ref := range b.Refs {
				fn(ref, b.Module)
			}
		case *Heading:
			for _, ref := range b.Refs {
				fn(ref, b.Module)
			}
		}
	})
}

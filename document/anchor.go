package document

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// Origin distinguishes heading anchors from symbol anchors.
type Origin int

const (
	OriginHeading Origin = iota
	OriginSymbol
)

func (o Origin) String() string {
	switch o {
	case OriginHeading:
		return "heading"
	case OriginSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// AnchorKey identifies an anchor build-wide. Heading keys carry the slug,
// symbol keys carry the qualified name plus normalised signature.
type AnchorKey struct {
	Origin Origin
	ID     string
}

func (k AnchorKey) String() string {
	return fmt.Sprintf("%s:%s", k.Origin, k.ID)
}

// IsZero reports whether the key is unset.
func (k AnchorKey) IsZero() bool { return k.ID == "" }

// HeadingKey builds the key for a heading slug.
func HeadingKey(slug string) AnchorKey {
	return AnchorKey{Origin: OriginHeading, ID: slug}
}

// SymbolKey builds the key for a symbol identity.
func SymbolKey(identity string) AnchorKey {
	return AnchorKey{Origin: OriginSymbol, ID: identity}
}

// Position is an in-page location: the top-level block index and, for
// entries spliced inside that block, the entry index.
type Position struct {
	Block int
	Entry int
}

// Less orders positions by block then entry.
func (p Position) Less(other Position) bool {
	if p.Block != other.Block {
		return p.Block < other.Block
	}
	return p.Entry < other.Entry
}

// Anchor is a registered link target.
type Anchor struct {
	Key  AnchorKey
	Page string
	// PageIndex is the owning page's position in build order.
	PageIndex int
	Position  Position
	Fragment  string
	// Title is the heading title or the symbol identity.
	Title string
	// Level is the heading level; zero for symbols.
	Level  int
	Symbol *interfaces.Symbol
	// Contested is set once a later registration tried to claim the key.
	Contested bool
}

// Before orders anchors by page build order, then in-page position.
func (a Anchor) Before(other Anchor) bool {
	if a.PageIndex != other.PageIndex {
		return a.PageIndex < other.PageIndex
	}
	return a.Position.Less(other.Position)
}

// Target converts the anchor to a link destination.
func (a Anchor) Target() *Target {
	return &Target{Page: a.Page, Fragment: a.Fragment}
}

// operatorNames spells out operator characters so that operator methods keep
// distinct fragments.
var operatorNames = map[rune]string{
	'+':  "plus",
	'-':  "minus",
	'*':  "times",
	'/':  "div",
	'\\': "bslash",
	'^':  "pow",
	'%':  "mod",
	'=':  "eq",
	'<':  "lt",
	'>':  "gt",
	'~':  "tilde",
	'|':  "or",
	'&':  "and",
	'$':  "dollar",
}

// SymbolFragment turns a symbol identity into a URL fragment:
// Base.length(::AbstractArray) becomes Base.length-AbstractArray and
// +(::Int,::Int) becomes op-plus-Int-Int.
func SymbolFragment(identity string) string {
	var b strings.Builder
	b.Grow(len(identity))
	pendingDash := false
	inOperator := false
	sep := func() {
		if pendingDash && b.Len() > 0 && !strings.HasSuffix(b.String(), ".") {
			b.WriteByte('-')
		}
		pendingDash = false
	}
	for _, r := range identity {
		name, isOp := operatorNames[r]
		if !isOp && unicode.IsSymbol(r) {
			name, isOp = fmt.Sprintf("u%04x", r), true
		}
		switch {
		case isOp:
			if !inOperator {
				if b.Len() > 0 {
					pendingDash = true
				}
				sep()
				b.WriteString("op")
			}
			b.WriteByte('-')
			b.WriteString(name)
			inOperator = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '!':
			if inOperator {
				pendingDash = true
				inOperator = false
			}
			sep()
			b.WriteRune(r)
		default:
			inOperator = false
			pendingDash = true
		}
	}
	if b.Len() == 0 {
		return "symbol"
	}
	return b.String()
}

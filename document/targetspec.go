package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrEmptyTarget is returned for a blank target line.
	ErrEmptyTarget = errors.New("document: empty target")
	// ErrInvalidIdentifier is returned when the name part is not an identifier path.
	ErrInvalidIdentifier = errors.New("document: invalid identifier")
	// ErrMalformedSignature is returned for unbalanced or trailing signature text.
	ErrMalformedSignature = errors.New("document: malformed signature")
)

// TargetSpec is a symbol identifier with an optional argument signature.
type TargetSpec struct {
	// Raw is the spec as written.
	Raw string
	// Name is the identifier, possibly qualified (Base.length).
	Name string
	// Signature is the normalised argument list including parentheses, or
	// empty when none was given.
	Signature  string
	SourceLine int
}

// HasSignature reports whether the spec narrows by signature.
func (t TargetSpec) HasSignature() bool { return t.Signature != "" }

// Identity is the qualified-name plus signature string used as anchor key.
func (t TargetSpec) Identity() string { return t.Name + t.Signature }

// Qualifier returns the module prefix of a qualified name, or "".
func (t TargetSpec) Qualifier() string {
	idx := strings.LastIndex(t.Name, ".")
	if idx <= 0 {
		return ""
	}
	return t.Name[:idx]
}

// BareName returns the last segment of the name.
func (t TargetSpec) BareName() string {
	idx := strings.LastIndex(t.Name, ".")
	if idx < 0 {
		return t.Name
	}
	return t.Name[idx+1:]
}

func (t TargetSpec) String() string { return t.Identity() }

// ParseTargetSpec parses `name` or `name(args)`.
func ParseTargetSpec(raw string) (TargetSpec, error) {
	text := strings.TrimSpace(raw)
	spec := TargetSpec{Raw: raw}
	if text == "" {
		return spec, ErrEmptyTarget
	}
	name := text
	sig := ""
	if idx := strings.IndexByte(text, '('); idx >= 0 {
		name = strings.TrimSpace(text[:idx])
		sig = text[idx:]
	} else if strings.ContainsRune(text, ')') {
		return spec, fmt.Errorf("%w: unexpected ')' in %q", ErrMalformedSignature, text)
	}
	if !validIdentifierPath(name) {
		return spec, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	spec.Name = name
	if sig != "" {
		normalized, err := NormalizeSignature(sig)
		if err != nil {
			return spec, err
		}
		spec.Signature = normalized
	}
	return spec, nil
}

// NormalizeSignature rewrites a parenthesised argument list so that
// `(x::T, y)` and `(::T,::Any)` compare equal. Argument names are dropped,
// untyped arguments become ::Any, and whitespace is removed. Nested brackets
// inside type annotations are preserved.
func NormalizeSignature(sig string) (string, error) {
	text := strings.TrimSpace(sig)
	if !strings.HasPrefix(text, "(") {
		return "", fmt.Errorf("%w: %q does not start with '('", ErrMalformedSignature, sig)
	}
	closing, err := matchingClose(text)
	if err != nil {
		return "", err
	}
	if rest := strings.TrimSpace(text[closing+1:]); rest != "" {
		return "", fmt.Errorf("%w: trailing %q", ErrMalformedSignature, rest)
	}
	inner := text[1:closing]
	args, err := splitArgs(inner)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		norm, err := normalizeArg(arg)
		if err != nil {
			return "", err
		}
		parts = append(parts, norm)
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func matchingClose(text string) (int, error) {
	depth := 0
	for i, r := range text {
		switch r {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth < 0 {
				return 0, fmt.Errorf("%w: unbalanced %q", ErrMalformedSignature, text)
			}
			if depth == 0 {
				if r != ')' {
					return 0, fmt.Errorf("%w: mismatched bracket in %q", ErrMalformedSignature, text)
				}
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unclosed %q", ErrMalformedSignature, text)
}

func splitArgs(inner string) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}
	var (
		args  []string
		depth int
		start int
	)
	for i, r := range inner {
		switch r {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q", ErrMalformedSignature, inner)
			}
		case ',', ';':
			if depth == 0 {
				args = append(args, inner[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced %q", ErrMalformedSignature, inner)
	}
	return append(args, inner[start:]), nil
}

func normalizeArg(arg string) (string, error) {
	compact := removeSpace(arg)
	if compact == "" {
		return "", fmt.Errorf("%w: empty argument", ErrMalformedSignature)
	}
	if idx := strings.Index(compact, "::"); idx >= 0 {
		typ := compact[idx+2:]
		if typ == "" {
			return "", fmt.Errorf("%w: missing type in %q", ErrMalformedSignature, strings.TrimSpace(arg))
		}
		return "::" + typ, nil
	}
	// Keyword-argument and default-value tails do not change the type.
	if idx := strings.IndexByte(compact, '='); idx >= 0 {
		compact = compact[:idx]
	}
	if compact == "" || !validIdentifierPath(strings.TrimSuffix(compact, "...")) {
		return "", fmt.Errorf("%w: bad argument %q", ErrMalformedSignature, strings.TrimSpace(arg))
	}
	return "::Any", nil
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// validIdentifierPath accepts dotted identifiers, allowing operator names and
// a trailing '!' the way docstring tables name mutating functions.
func validIdentifierPath(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if !validIdentifier(seg) {
			return false
		}
	}
	return true
}

func validIdentifier(seg string) bool {
	if seg == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(seg)
	if !(unicode.IsLetter(first) || first == '_') {
		return isOperator(seg)
	}
	for i, r := range seg {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			continue
		}
		if r == '!' && i == len(seg)-1 {
			continue
		}
		return false
	}
	return true
}

func isOperator(seg string) bool {
	for _, r := range seg {
		if !strings.ContainsRune("+-*/\\^%<>=!&|~", r) {
			return false
		}
	}
	return true
}

package diagnostics

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindParseError       Kind = "ParseError"
	KindUnresolvedRef    Kind = "UnresolvedRef"
	KindAmbiguousRef     Kind = "AmbiguousRef"
	KindDuplicateAnchor  Kind = "DuplicateAnchor"
	KindNoMatchingSymbol Kind = "NoMatchingSymbol"
)

// Kinds lists every kind in summary order.
var Kinds = []Kind{
	KindParseError,
	KindDuplicateAnchor,
	KindNoMatchingSymbol,
	KindAmbiguousRef,
	KindUnresolvedRef,
}

// TextCode returns the go-errors text code for the kind.
func (k Kind) TextCode() string {
	switch k {
	case KindParseError:
		return "PARSE_ERROR"
	case KindUnresolvedRef:
		return "UNRESOLVED_REF"
	case KindAmbiguousRef:
		return "AMBIGUOUS_REF"
	case KindDuplicateAnchor:
		return "DUPLICATE_ANCHOR"
	case KindNoMatchingSymbol:
		return "NO_MATCHING_SYMBOL"
	default:
		return "DIAGNOSTIC"
	}
}

func (k Kind) category() goerrors.Category {
	switch k {
	case KindParseError:
		return goerrors.CategoryBadInput
	case KindDuplicateAnchor, KindAmbiguousRef:
		return goerrors.CategoryConflict
	case KindUnresolvedRef, KindNoMatchingSymbol:
		return goerrors.CategoryNotFound
	default:
		return goerrors.CategoryValidation
	}
}

// Severity reuses the go-errors levels. Diagnostics only use
// SeverityWarning and SeverityError.
type Severity = goerrors.Severity

const (
	SeverityWarning = goerrors.SeverityWarning
	SeverityError   = goerrors.SeverityError
)

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Page     string
	// Line is 1-based; zero when the problem has no source line.
	Line   int
	Detail string
}

// IsError reports whether the diagnostic has error severity or above.
func (d Diagnostic) IsError() bool { return d.Severity >= SeverityError }

// Location renders page:line, or just the page when the line is unknown.
func (d Diagnostic) Location() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d", d.Page, d.Line)
	}
	return d.Page
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location(), d.Severity, d.Kind, d.Detail)
}

// Err converts the diagnostic to a categorised error.
func (d Diagnostic) Err() *goerrors.Error {
	return goerrors.New(d.Detail, d.Kind.category()).
		WithTextCode(d.Kind.TextCode()).
		WithSeverity(d.Severity).
		WithMetadata(map[string]any{
			"kind": string(d.Kind),
			"page": d.Page,
			"line": d.Line,
		})
}

package diagnostics

import "fmt"

// Reporter receives diagnostics from a build stage.
type Reporter interface {
	Report(d Diagnostic)
}

// Collector is an append-only list of diagnostics. It is not safe for
// concurrent use; concurrent stages fill one collector each and merge them in
// page order.
type Collector struct {
	items []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.items = append(c.items, d)
}

// Errorf appends an error-severity diagnostic.
func (c *Collector) Errorf(kind Kind, page string, line int, format string, args ...any) {
	c.Report(Diagnostic{Severity: SeverityError, Kind: kind, Page: page, Line: line, Detail: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning-severity diagnostic.
func (c *Collector) Warnf(kind Kind, page string, line int, format string, args ...any) {
	c.Report(Diagnostic{Severity: SeverityWarning, Kind: kind, Page: page, Line: line, Detail: fmt.Sprintf(format, args...)})
}

// Merge appends every diagnostic of other, keeping its order.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

// Len returns the number of diagnostics.
func (c *Collector) Len() int { return len(c.items) }

// Items returns a copy of the diagnostics in raised order.
func (c *Collector) Items() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// HasErrors reports whether any diagnostic is an error.
func (c *Collector) HasErrors() bool {
	for i := range c.items {
		if c.items[i].IsError() {
			return true
		}
	}
	return false
}

// Summary counts the collected diagnostics.
func (c *Collector) Summary() Summary {
	return Summarize(c.items)
}

// Summary holds counts by kind and severity.
type Summary struct {
	Total    int
	Errors   int
	Warnings int
	ByKind   map[Kind]int
}

// Summarize counts diags.
func Summarize(diags []Diagnostic) Summary {
	s := Summary{ByKind: make(map[Kind]int)}
	for _, d := range diags {
		s.Total++
		if d.IsError() {
			s.Errors++
		} else {
			s.Warnings++
		}
		s.ByKind[d.Kind]++
	}
	return s
}

// Count returns the number of diagnostics of kind.
func (s Summary) Count(kind Kind) int { return s.ByKind[kind] }

func (s Summary) String() string {
	return fmt.Sprintf("%d error(s), %d warning(s)", s.Errors, s.Warnings)
}

// Filter returns the diagnostics matching kind.
func Filter(diags []Diagnostic, kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

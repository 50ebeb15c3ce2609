package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-refdocs"
	"github.com/goliatone/go-refdocs/diagnostics"
)

type printer struct {
	w        io.Writer
	errColor *color.Color
	warn     *color.Color
	ok       *color.Color
	dim      *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	p := &printer{
		w:        w,
		errColor: color.New(color.FgRed, color.Bold),
		warn:     color.New(color.FgYellow, color.Bold),
		ok:       color.New(color.FgGreen, color.Bold),
		dim:      color.New(color.Faint),
	}
	enable := useColor(w, mode)
	for _, c := range []*color.Color{p.errColor, p.warn, p.ok, p.dim} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func useColor(w io.Writer, mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "always", "true":
		return true
	case "off", "never", "false":
		return false
	}
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}

// diagnostics prints one line per diagnostic in the order they were
// reported: page:line: severity[Kind]: detail.
func (p *printer) diagnostics(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		label := p.warn.Sprint("warning")
		if d.IsError() {
			label = p.errColor.Sprint("error")
		}
		fmt.Fprintf(p.w, "%s: %s[%s]: %s\n", d.Location(), label, d.Kind, d.Detail)
	}
}

func (p *printer) summary(out *refdocs.Outcome, dryRun bool) {
	res := out.Result
	status := p.ok.Sprint("ok")
	switch {
	case res.Summary.Errors > 0:
		status = p.errColor.Sprint("failed")
	case res.Summary.Warnings > 0:
		status = p.warn.Sprint("ok")
	}

	written := "dry run"
	if !dryRun && out.Report != nil {
		written = fmt.Sprintf("%d file(s) written", len(out.Report.Files))
	}
	fmt.Fprintf(p.w, "%s %d page(s), %s %s\n", status, len(res.Pages), res.Summary, p.dim.Sprintf("(%s, build %s)", written, res.BuildID))
}

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--color", "off", "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommandWritesOutput(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		"docs/index.md": "# Home\n\nUse [`length`](@ref).\n",
		"docs/api.md":   "# API\n\n```@docs\nlength\n```\n",
		"symbols.yaml":  "symbols:\n  - name: Base.length\n    doc: Number of elements.\n",
	})

	output, err := runCLI(t, "build",
		"--content", filepath.Join(dir, "docs"),
		"--out", filepath.Join(dir, "out"),
		"--symbols", filepath.Join(dir, "symbols.yaml"),
		"--modules", "Base",
	)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, output)
	}
	if !strings.Contains(output, "ok 2 page(s), 0 error(s), 0 warning(s)") {
		t.Fatalf("unexpected summary %q", output)
	}
	page, err := os.ReadFile(filepath.Join(dir, "out", "index.md"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(page), "(api.md#Base.length)") {
		t.Fatalf("expected resolved link, got %q", page)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", ".refdocs-manifest.json")); err != nil {
		t.Fatalf("expected manifest: %v", err)
	}
}

func TestCheckCommandReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		"docs/index.md": "# Home\n\nSee [Nowhere](@ref).\n",
	})

	output, err := runCLI(t, "check",
		"--content", filepath.Join(dir, "docs"),
		"--provider", "memory",
	)
	var exit exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit status 1, got %v", err)
	}
	if !strings.Contains(output, "index.md:3: error[UnresolvedRef]:") {
		t.Fatalf("expected located diagnostic, got %q", output)
	}
	if !strings.Contains(output, "failed 1 page(s), 1 error(s), 0 warning(s)") {
		t.Fatalf("unexpected summary %q", output)
	}
}

func TestBuildCommandRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{"docs/index.md": "# Home\n"})

	_, err := runCLI(t, "build",
		"--content", filepath.Join(dir, "docs"),
		"--out", filepath.Join(dir, "out"),
		"--provider", "memory",
		"--format", "pdf",
	)
	if err == nil {
		t.Fatalf("expected an invalid format error")
	}
}

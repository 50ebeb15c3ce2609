package refdocs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-refdocs"
	"github.com/goliatone/go-refdocs/internal/logging/gologger"
	"github.com/goliatone/go-refdocs/internal/providers/sqlstore"
	"github.com/goliatone/go-refdocs/internal/runtimeconfig"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
	"github.com/goliatone/go-refdocs/pkg/testsupport"
)

var samplePages = fstest.MapFS{
	"index.md": {Data: []byte("# Overview\n\nSee [`Base.length`](@ref).\n")},
	"api.md":   {Data: []byte("# API\n\n```@docs\nlength\n```\n")},
}

func testConfig() refdocs.Config {
	cfg := refdocs.DefaultConfig()
	cfg.Build.Modules = []string{"Base"}
	cfg.Provider.Kind = runtimeconfig.ProviderMemory
	return cfg
}

func TestModuleBuildWritesPages(t *testing.T) {
	writer := refdocs.NewMemoryWriter()
	table := refdocs.NewMemoryProvider(refdocs.Symbol{Name: "Base.length", Doc: "Number of elements."})

	module, err := refdocs.New(testConfig(),
		refdocs.WithProvider(table),
		refdocs.WithContentFS(samplePages),
		refdocs.WithWriter(writer),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	out, err := module.Build(context.Background(), refdocs.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Result.Pages) != 2 || out.Report == nil {
		t.Fatalf("unexpected outcome %#v", out)
	}
	index, ok := writer.File("index.md")
	if !ok {
		t.Fatalf("index.md not written, got %v", writer.Paths())
	}
	if !strings.Contains(string(index), "(api.md#Base.length)") {
		t.Fatalf("expected symbol link into api.md, got %q", index)
	}
}

func TestModuleCheckReportsFailures(t *testing.T) {
	writer := refdocs.NewMemoryWriter()
	module, err := refdocs.New(testConfig(),
		refdocs.WithContentFS(samplePages),
		refdocs.WithWriter(writer),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := module.Check(context.Background())
	if !errors.Is(err, refdocs.ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed with an empty provider, got %v", err)
	}
	if out == nil || out.Result.Summary.Errors == 0 {
		t.Fatalf("expected diagnostics in the outcome")
	}
	if len(writer.Paths()) != 0 {
		t.Fatalf("check must not write, got %v", writer.Paths())
	}
}

func TestModuleEngineOptions(t *testing.T) {
	var writer refdocs.ArtifactWriter = refdocs.NewMemoryWriter()
	var engineOpts []refdocs.EngineOption
	engineOpts = append(engineOpts, refdocs.WithBuildID("docs-42"))

	module, err := refdocs.New(testConfig(),
		refdocs.WithProvider(refdocs.NewMemoryProvider(refdocs.Symbol{Name: "Base.length", Doc: "Number of elements."})),
		refdocs.WithContentFS(samplePages),
		refdocs.WithWriter(writer),
		refdocs.WithEngineOptions(engineOpts...),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	out, err := module.Build(context.Background(), refdocs.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Result.BuildID != "docs-42" {
		t.Fatalf("expected build id docs-42, got %q", out.Result.BuildID)
	}
	var report *refdocs.Report = out.Report
	if report == nil || len(report.Files) == 0 {
		t.Fatalf("expected written files in the report")
	}
	if _, ok := writer.(*refdocs.MemoryWriter).File("api.md"); !ok {
		t.Fatalf("api.md not written")
	}
}

func TestModuleLoadsFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.yaml")
	table := "symbols:\n  - name: Base.length\n    doc: Number of elements.\n"
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	cfg := testConfig()
	cfg.Provider = refdocs.ProviderConfig{Kind: runtimeconfig.ProviderFile, Path: path}
	module, err := refdocs.New(cfg, refdocs.WithContentFS(samplePages))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := module.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestModuleFileProviderMissing(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = refdocs.ProviderConfig{Kind: runtimeconfig.ProviderFile, Path: filepath.Join(t.TempDir(), "none.yaml")}
	if _, err := refdocs.New(cfg); err == nil {
		t.Fatalf("expected missing table to fail")
	}
}

func TestModuleOpensSQLProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = refdocs.ProviderConfig{Kind: runtimeconfig.ProviderSQL, Driver: "sqlite3", DSN: testsupport.SQLiteMemoryDSN(t.Name())}
	module, err := refdocs.New(cfg, refdocs.WithContentFS(samplePages))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	store, ok := module.Provider().(*sqlstore.Store)
	if !ok {
		t.Fatalf("expected sqlstore provider, got %T", module.Provider())
	}
	ctx := context.Background()
	if err := store.Upsert(ctx, interfaces.Symbol{Name: "Base.length", Doc: "Number of elements."}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := module.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestModuleUsesGoLoggerProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	module, err := refdocs.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := module.Loggers().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", module.Loggers())
	}
}

func TestConfigValidateRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.Kind = "ldap"
	if _, err := refdocs.New(cfg); !errors.Is(err, refdocs.ErrProviderUnknown) {
		t.Fatalf("expected ErrProviderUnknown, got %v", err)
	}
}

func TestConfigValidateRequiresOutputDir(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Dir = ""
	if err := cfg.Validate(); !errors.Is(err, refdocs.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

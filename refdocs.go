package refdocs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-refdocs/document"
	buildcmd "github.com/goliatone/go-refdocs/internal/commands/build"
	"github.com/goliatone/go-refdocs/internal/expand"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/internal/logging/console"
	"github.com/goliatone/go-refdocs/internal/logging/gologger"
	"github.com/goliatone/go-refdocs/internal/markdown"
	"github.com/goliatone/go-refdocs/internal/providers/memory"
	"github.com/goliatone/go-refdocs/internal/providers/sqlstore"
	"github.com/goliatone/go-refdocs/internal/providers/tablefile"
	"github.com/goliatone/go-refdocs/internal/render"
	"github.com/goliatone/go-refdocs/internal/runtimeconfig"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// Result is the terminal state of a build.
type Result = expand.Result

// Outcome pairs a build result with the written report.
type Outcome = buildcmd.Outcome

// BuildFailedError is returned when a build finishes with failing diagnostics.
type BuildFailedError = buildcmd.BuildFailedError

// ErrBuildFailed matches every BuildFailedError.
var ErrBuildFailed = buildcmd.ErrBuildFailed

// SymbolProvider exports the provider contract.
type SymbolProvider = interfaces.SymbolProvider

// Symbol exports the provider record.
type Symbol = interfaces.Symbol

// MemoryProvider serves symbols from an in-memory table.
type MemoryProvider = memory.Table

// NewMemoryProvider returns a provider holding symbols.
func NewMemoryProvider(symbols ...Symbol) *MemoryProvider {
	return memory.NewTable(symbols...)
}

// Report summarises the artifacts a build wrote.
type Report = render.Report

// ArtifactWriter receives rendered pages and the manifest.
type ArtifactWriter = render.ArtifactWriter

// WriteRequest is one artifact handed to an ArtifactWriter.
type WriteRequest = render.WriteRequest

// MemoryWriter keeps artifacts in memory.
type MemoryWriter = render.MemoryWriter

// NewMemoryWriter returns an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return render.NewMemoryWriter()
}

// NewDirWriter writes artifacts below dir.
func NewDirWriter(dir string) ArtifactWriter {
	return render.NewDirWriter(dir)
}

// EngineOption configures the expansion engine of every build.
type EngineOption = expand.Option

// WithBuildID fixes the build id instead of generating one.
func WithBuildID(id string) EngineOption {
	return expand.WithBuildID(id)
}

// WithSlugNormalizer overrides heading slug normalisation.
func WithSlugNormalizer(n document.SlugNormalizer) EngineOption {
	return expand.WithSlugNormalizer(n)
}

// Module is the top level refdocs façade.
type Module struct {
	cfg      Config
	provider interfaces.SymbolProvider
	loggers  interfaces.LoggerProvider
	content  fs.FS
	writer   ArtifactWriter
	engine   []EngineOption
	closers  []func() error
}

// Option customises a Module.
type Option func(*Module)

// WithProvider overrides the configured symbol provider.
func WithProvider(provider interfaces.SymbolProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.loggers = provider
	}
}

// WithContentFS reads pages from fsys instead of the content directory.
func WithContentFS(fsys fs.FS) Option {
	return func(m *Module) {
		m.content = fsys
	}
}

// WithWriter sends output to writer instead of the output directory.
func WithWriter(writer ArtifactWriter) Option {
	return func(m *Module) {
		m.writer = writer
	}
}

// WithEngineOptions forwards options to every expansion engine.
func WithEngineOptions(opts ...EngineOption) Option {
	return func(m *Module) {
		m.engine = append(m.engine, opts...)
	}
}

// New validates cfg and wires the providers it names.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Module{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.loggers == nil {
		loggers, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.loggers = loggers
	}
	if m.provider == nil {
		if err := m.openProvider(context.Background()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config { return m.cfg }

// Provider returns the active symbol provider.
func (m *Module) Provider() interfaces.SymbolProvider { return m.provider }

// Loggers returns the active logger provider.
func (m *Module) Loggers() interfaces.LoggerProvider { return m.loggers }

// BuildOptions adjusts a single build.
type BuildOptions struct {
	DryRun         bool
	FailOnWarnings bool
}

// Build reads the content directory, expands every page and writes the
// result. A build with failing diagnostics returns the outcome together with
// a BuildFailedError.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*Outcome, error) {
	handler := buildcmd.NewBuildHandler(m.dependencies())
	return handler.Run(ctx, buildcmd.BuildCommand{
		ContentDir:     m.cfg.Markdown.ContentDir,
		Pages:          m.cfg.Build.Pages,
		OutputDir:      m.cfg.Output.Dir,
		Format:         m.cfg.Output.Format,
		DryRun:         opts.DryRun,
		Clean:          m.cfg.Output.Clean,
		FailOnWarnings: opts.FailOnWarnings,
	})
}

// Check expands every page without writing output.
func (m *Module) Check(ctx context.Context) (*Outcome, error) {
	return m.Build(ctx, BuildOptions{DryRun: true})
}

// Close releases providers opened by New.
func (m *Module) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Module) dependencies() buildcmd.Dependencies {
	deps := buildcmd.Dependencies{
		Provider: m.provider,
		Loggers:  m.loggers,
		Engine: expand.Config{
			Modules:       m.cfg.Build.Modules,
			DefaultModule: m.cfg.Build.DefaultModule,
			StrictRefs:    m.cfg.Build.StrictRefs,
			Workers:       m.cfg.Build.Workers,
		},
		Loader: markdown.LoaderConfig{
			Pattern:   m.cfg.Markdown.Pattern,
			Recursive: m.cfg.Markdown.Recursive,
		},
		HTML: interfaces.ParseOptions{
			Extensions: m.cfg.Markdown.Parser.Extensions,
			Sanitize:   m.cfg.Markdown.Parser.Sanitize,
			HardWraps:  m.cfg.Markdown.Parser.HardWraps,
			SafeMode:   m.cfg.Markdown.Parser.SafeMode,
		},
		Manifest:      m.cfg.Output.Manifest,
		EngineOptions: m.engine,
	}
	if m.content != nil {
		content := m.content
		deps.OpenFS = func(string) fs.FS { return content }
	}
	if m.writer != nil {
		writer := m.writer
		deps.OpenWriter = func(string) render.ArtifactWriter { return writer }
	}
	return deps
}

func (m *Module) openProvider(ctx context.Context) error {
	logger := logging.SymbolsLogger(m.loggers)
	cfg := m.cfg.Provider

	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case runtimeconfig.ProviderMemory:
		m.provider = memory.NewTable()
	case runtimeconfig.ProviderFile:
		table, err := tablefile.Load(os.DirFS(filepath.Dir(cfg.Path)), filepath.Base(cfg.Path))
		if err != nil {
			return err
		}
		logger.Debug("symbols.table.loaded", "path", cfg.Path, "symbols", table.Len())
		m.provider = table
	case runtimeconfig.ProviderSQL:
		store, err := sqlstore.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return err
		}
		logger.Debug("symbols.store.opened", "driver", cfg.Driver)
		m.provider = store
		m.closers = append(m.closers, store.Close)
	default:
		return runtimeconfig.ErrProviderUnknown
	}
	return nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

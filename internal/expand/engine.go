// Package expand drives a build through its stages: Parse, ExpandDocs,
// ExpandIndexes and ResolveRefs. Each stage runs once, in that order, over
// the page trees owned by the Engine and a registry of anchors shared by
// every page.
package expand

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/anchors"
	"github.com/goliatone/go-refdocs/internal/directive"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/internal/symbols"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

var (
	// ErrStageOrder is returned when a stage is called out of order.
	ErrStageOrder = errors.New("expand: stage called out of order")
	// ErrAborted is returned by every stage after a fatal error.
	ErrAborted = errors.New("expand: build aborted")
	// ErrDuplicatePage is returned when two sources share an id.
	ErrDuplicatePage = errors.New("expand: duplicate page id")
)

// Stage is the last completed stage of an Engine.
type Stage int

const (
	StageNew Stage = iota
	StageParsed
	StageDocsExpanded
	StageIndexesExpanded
	StageResolved
)

var stageNames = [...]string{"new", "parse", "docs", "indexes", "refs"}

func (s Stage) String() string {
	if int(s) >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Config holds the build settings the engine reads.
type Config struct {
	// Modules is the build-level module list; empty means none.
	Modules []string
	// DefaultModule seeds pages without a front matter module.
	DefaultModule string
	// StrictRefs turns ambiguous symbol references into errors.
	StrictRefs bool
	// Workers bounds the concurrent per-page stages; zero or less means one
	// goroutine per page.
	Workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoggerProvider routes engine and resolver logs through provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(e *Engine) {
		e.loggers = provider
	}
}

// WithBuildID fixes the build id instead of generating one.
func WithBuildID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.buildID = id
		}
	}
}

// WithSlugNormalizer overrides heading slug normalisation.
func WithSlugNormalizer(n document.SlugNormalizer) Option {
	return func(e *Engine) {
		e.slugs = n
	}
}

// Engine owns one build. It is not safe for concurrent use; stages fan out
// internally where the stage allows it.
type Engine struct {
	cfg      Config
	buildID  string
	loggers  interfaces.LoggerProvider
	slugs    document.SlugNormalizer
	logger   interfaces.Logger
	parser   *directive.Parser
	resolver *symbols.Resolver
	registry *anchors.Registry

	stage     Stage
	failed    error
	pages     []*document.Page
	pageIndex map[string]int
	fragments []map[string]int
	diags     *diagnostics.Collector
}

// New returns an engine that resolves docs targets through provider.
func New(provider interfaces.SymbolProvider, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		registry: anchors.NewRegistry(),
		diags:    diagnostics.NewCollector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.buildID == "" {
		e.buildID = uuid.NewString()
	}
	e.logger = logging.WithBuildContext(logging.ExpandLogger(e.loggers), e.buildID, "", "")
	e.parser = directive.NewParser(directive.Options{
		DefaultModule: cfg.DefaultModule,
		Slugs:         e.slugs,
	})
	e.resolver = symbols.NewResolver(provider,
		symbols.WithModules(cfg.Modules...),
		symbols.WithLogger(logging.SymbolsLogger(e.loggers)),
	)
	return e
}

// BuildID identifies this build in logs and results.
func (e *Engine) BuildID() string { return e.buildID }

// Stage returns the last completed stage.
func (e *Engine) Stage() Stage { return e.stage }

// Pages returns the page trees in build order.
func (e *Engine) Pages() []*document.Page { return e.pages }

// Diagnostics returns the diagnostics raised so far.
func (e *Engine) Diagnostics() []diagnostics.Diagnostic { return e.diags.Items() }

// Registry exposes the anchor registry.
func (e *Engine) Registry() *anchors.Registry { return e.registry }

// enter checks that the engine is ready to run next after want.
func (e *Engine) enter(want Stage, next Stage) error {
	if e.failed != nil {
		return goerrors.Wrap(ErrAborted, goerrors.CategoryOperation, e.failed.Error()).
			WithTextCode("BUILD_ABORTED")
	}
	if e.stage != want {
		return goerrors.Wrap(ErrStageOrder, goerrors.CategoryOperation,
			fmt.Sprintf("cannot run %s after %s", next, e.stage)).
			WithTextCode("STAGE_ORDER").
			WithMetadata(map[string]any{"stage": e.stage.String(), "requested": next.String()})
	}
	return nil
}

func (e *Engine) finish(stage Stage, started time.Time, err error) error {
	if err != nil {
		e.failed = err
		e.logger.Error("expand.stage.failed", "stage", stage.String(), "error", err)
		return err
	}
	e.stage = stage
	e.logger.Info("expand.stage.completed",
		"stage", stage.String(),
		"pages", len(e.pages),
		"anchors", e.registry.Len(),
		"diagnostics", e.diags.Len(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// Result is the terminal state of a build.
type Result struct {
	BuildID     string
	Pages       []*document.Page
	Diagnostics []diagnostics.Diagnostic
	Anchors     []document.Anchor
	Summary     diagnostics.Summary
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool { return r != nil && r.Summary.Errors > 0 }

// Result returns the build result once every stage has run.
func (e *Engine) Result() (*Result, error) {
	if err := e.enter(StageResolved, StageResolved); err != nil {
		return nil, err
	}
	items := e.diags.Items()
	return &Result{
		BuildID:     e.buildID,
		Pages:       e.pages,
		Diagnostics: items,
		Anchors:     e.registry.Anchors(nil),
		Summary:     diagnostics.Summarize(items),
	}, nil
}

// Run executes every remaining stage in order and returns the result.
func (e *Engine) Run(ctx context.Context, sources []*Source) (*Result, error) {
	if err := e.Parse(ctx, sources); err != nil {
		return nil, err
	}
	if err := e.ExpandDocs(ctx); err != nil {
		return nil, err
	}
	if err := e.ExpandIndexes(ctx); err != nil {
		return nil, err
	}
	if err := e.ResolveRefs(ctx); err != nil {
		return nil, err
	}
	return e.Result()
}

// Build runs a fresh engine over sources.
func Build(ctx context.Context, provider interfaces.SymbolProvider, cfg Config, sources []*Source, opts ...Option) (*Result, error) {
	return New(provider, cfg, opts...).Run(ctx, sources)
}

package buildcmd

import (
	"context"
	"io/fs"
	"os"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-refdocs/internal/commands"
	"github.com/goliatone/go-refdocs/internal/expand"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/internal/markdown"
	"github.com/goliatone/go-refdocs/internal/render"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

const buildOperation = "docs.build"

var _ command.Commander[BuildCommand] = (*BuildHandler)(nil)

// Dependencies are the collaborators shared by every build.
type Dependencies struct {
	Provider interfaces.SymbolProvider
	Loggers  interfaces.LoggerProvider
	Engine   expand.Config
	Loader   markdown.LoaderConfig
	HTML     interfaces.ParseOptions
	Manifest bool
	// OpenFS opens the content directory. Defaults to os.DirFS.
	OpenFS func(dir string) fs.FS
	// OpenWriter opens the output directory. Defaults to a render.DirWriter.
	OpenWriter func(dir string) render.ArtifactWriter
	// EngineOptions are appended to every engine the handler creates.
	EngineOptions []expand.Option
}

// Outcome is what a build produced. Report is nil on a dry run.
type Outcome struct {
	Result *expand.Result
	Report *render.Report
}

type cleaner interface {
	Clean(ctx context.Context) error
}

// BuildHandler runs BuildCommand through the shared command handler.
type BuildHandler struct {
	deps   Dependencies
	logger interfaces.Logger
	opts   []commands.HandlerOption[BuildCommand]
}

// NewBuildHandler returns a handler bound to deps.
func NewBuildHandler(deps Dependencies, opts ...commands.HandlerOption[BuildCommand]) *BuildHandler {
	if deps.OpenFS == nil {
		deps.OpenFS = os.DirFS
	}
	if deps.OpenWriter == nil {
		deps.OpenWriter = func(dir string) render.ArtifactWriter { return render.NewDirWriter(dir) }
	}
	return &BuildHandler{
		deps:   deps,
		logger: commands.CommandLogger(deps.Loggers, "build"),
		opts:   opts,
	}
}

// Execute implements command.Commander.
func (h *BuildHandler) Execute(ctx context.Context, msg BuildCommand) error {
	_, err := h.Run(ctx, msg)
	return err
}

// Run executes msg and returns the outcome alongside any error. A build
// with error diagnostics returns both the outcome and a BuildFailedError.
func (h *BuildHandler) Run(ctx context.Context, msg BuildCommand) (*Outcome, error) {
	var outcome *Outcome
	exec := func(ctx context.Context, msg BuildCommand) error {
		out, err := h.build(ctx, msg)
		outcome = out
		return err
	}
	handlerOpts := []commands.HandlerOption[BuildCommand]{
		commands.WithLogger[BuildCommand](h.logger),
		commands.WithOperation[BuildCommand](buildOperation),
	}
	handler := commands.NewHandler[BuildCommand](exec, append(handlerOpts, h.opts...)...)
	err := handler.Execute(ctx, msg)
	return outcome, err
}

func (h *BuildHandler) build(ctx context.Context, msg BuildCommand) (*Outcome, error) {
	format, err := render.ParseFormat(msg.Format)
	if err != nil {
		return nil, err
	}

	loader := markdown.NewLoader(h.deps.OpenFS(msg.ContentDir), h.deps.Loader)
	var sources []*markdown.Source
	if len(msg.Pages) > 0 {
		sources, err = loader.LoadPages(ctx, msg.Pages)
	} else {
		sources, err = loader.LoadDirectory(ctx, ".")
	}
	if err != nil {
		return nil, err
	}

	engineOpts := append([]expand.Option{expand.WithLoggerProvider(h.deps.Loggers)}, h.deps.EngineOptions...)
	res, err := expand.Build(ctx, h.deps.Provider, h.deps.Engine, sources, engineOpts...)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Result: res}

	logger := logging.WithBuildContext(h.logger, res.BuildID, "", "")
	logging.WithFields(logger, map[string]any{
		"pages":    len(res.Pages),
		"anchors":  len(res.Anchors),
		"errors":   res.Summary.Errors,
		"warnings": res.Summary.Warnings,
		"dry_run":  msg.DryRun,
	}).Info("build.command.expanded")

	if !msg.DryRun {
		writer := h.deps.OpenWriter(msg.OutputDir)
		if c, ok := writer.(cleaner); ok && msg.Clean {
			if err := c.Clean(ctx); err != nil {
				return outcome, err
			}
		}
		svc := render.NewService(writer,
			render.Options{Format: format, HTML: h.deps.HTML, Manifest: h.deps.Manifest},
			render.WithLogger(logging.RenderLogger(h.deps.Loggers)),
		)
		report, err := svc.Write(ctx, res)
		if err != nil {
			return outcome, err
		}
		outcome.Report = report
	}

	return outcome, failure(res, msg.FailOnWarnings)
}

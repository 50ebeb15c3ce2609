package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-refdocs/internal/expand"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/internal/markdown"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// ErrNoResult is returned when Write is called without a build result.
var ErrNoResult = errors.New("render: build result required")

// Options configures the output of a Service.
type Options struct {
	Format Format
	// HTML is passed to the markdown renderer in html format.
	HTML interfaces.ParseOptions
	// Manifest writes ManifestFileName next to the pages.
	Manifest bool
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithMarkdownRenderer replaces the goldmark renderer used for html.
func WithMarkdownRenderer(r interfaces.MarkdownRenderer) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.html = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock fixes the manifest timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service writes build results.
type Service struct {
	opts   Options
	writer ArtifactWriter
	html   interfaces.MarkdownRenderer
	logger interfaces.Logger
	now    func() time.Time
}

// Report lists what Write produced.
type Report struct {
	Files    []string
	Manifest *Manifest
}

// NewService returns a Service writing through writer.
func NewService(writer ArtifactWriter, opts Options, options ...ServiceOption) *Service {
	if opts.Format == "" {
		opts.Format = FormatMarkdown
	}
	s := &Service{
		opts:   opts,
		writer: writer,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.html == nil {
		s.html = markdown.NewGoldmarkParser(opts.HTML)
	}
	return s
}

// Render returns the output bytes for every page, in build order.
func (s *Service) Render(res *expand.Result) ([][]byte, error) {
	if res == nil {
		return nil, ErrNoResult
	}
	out := make([][]byte, 0, len(res.Pages))
	for _, page := range res.Pages {
		body := []byte(Markdown(page, res.Anchors, s.opts.Format))
		if s.opts.Format == FormatHTML {
			rendered, err := s.html.ParseWithOptions(body, s.opts.HTML)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "render page "+page.ID).
					WithTextCode("RENDER_FAILED").
					WithMetadata(map[string]any{"page": page.ID})
			}
			body = rendered
		}
		out = append(out, body)
	}
	return out, nil
}

// Write renders res and stores every page, then the manifest when enabled.
func (s *Service) Write(ctx context.Context, res *expand.Result) (*Report, error) {
	bodies, err := s.Render(res)
	if err != nil {
		return nil, err
	}
	logger := logging.WithBuildContext(s.logger, res.BuildID, "render", "")
	manifest := newManifest(res, s.opts.Format, s.now())
	report := &Report{Manifest: manifest}

	if err := s.writer.EnsureDir(ctx, "."); err != nil {
		return nil, writeError(err, ".")
	}
	for i, page := range res.Pages {
		output := OutputPath(page.ID, s.opts.Format)
		body := bodies[i]
		sum := checksum(body)
		if dir := path.Dir(output); dir != "." {
			if err := s.writer.EnsureDir(ctx, dir); err != nil {
				return nil, writeError(err, dir)
			}
		}
		err := s.writer.WriteFile(ctx, WriteRequest{
			Path:        output,
			Content:     body,
			Category:    CategoryPage,
			ContentType: contentType(s.opts.Format),
			Checksum:    sum,
		})
		if err != nil {
			return nil, writeError(err, output)
		}
		logger.Debug("render.page.written", "page", page.ID, "output", output, "bytes", len(body))
		report.Files = append(report.Files, output)
		manifest.Pages = append(manifest.Pages, ManifestPage{
			Page:     page.ID,
			Title:    page.Title,
			Module:   page.Module,
			Output:   output,
			Checksum: sum,
		})
	}

	if s.opts.Manifest {
		data, err := manifest.marshal()
		if err != nil {
			return nil, err
		}
		err = s.writer.WriteFile(ctx, WriteRequest{
			Path:        ManifestFileName,
			Content:     data,
			Category:    CategoryManifest,
			ContentType: "application/json",
			Checksum:    checksum(data),
		})
		if err != nil {
			return nil, writeError(err, ManifestFileName)
		}
		report.Files = append(report.Files, ManifestFileName)
	}

	logger.Info("render.completed", "files", len(report.Files), "format", string(s.opts.Format))
	return report, nil
}

func writeError(err error, target string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "write "+target).
		WithTextCode("RENDER_WRITE_FAILED").
		WithMetadata(map[string]any{"path": target})
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func contentType(format Format) string {
	if format == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

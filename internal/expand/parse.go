package expand

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/internal/markdown"
)

// Source is a page as read by the loader.
type Source = markdown.Source

// Parse parses every source into a page. Sources are parsed concurrently;
// pages and diagnostics keep the order of sources.
func (e *Engine) Parse(ctx context.Context, sources []*Source) error {
	if err := e.enter(StageNew, StageParsed); err != nil {
		return err
	}
	started := time.Now()

	index := make(map[string]int, len(sources))
	for i, src := range sources {
		if _, ok := index[src.ID]; ok {
			err := goerrors.Wrap(ErrDuplicatePage, goerrors.CategoryBadInput, "page "+src.ID+" is listed twice").
				WithTextCode("DUPLICATE_PAGE")
			return e.finish(StageParsed, started, err)
		}
		index[src.ID] = i
	}

	pages := make([]*document.Page, len(sources))
	bags := make([]*diagnostics.Collector, len(sources))

	logger := logging.WithBuildContext(logging.ParseLogger(e.loggers), e.buildID, StageParsed.String(), "")
	err := e.forEach(ctx, len(sources), func(i int) error {
		bag := diagnostics.NewCollector()
		pages[i] = e.parser.Parse(sources[i], bag)
		bags[i] = bag
		logger.Debug("parse.page.completed",
			"page", sources[i].ID,
			"blocks", len(pages[i].Blocks),
			"diagnostics", bag.Len(),
		)
		return nil
	})
	if err != nil {
		return e.finish(StageParsed, started, err)
	}

	for _, bag := range bags {
		e.diags.Merge(bag)
	}
	e.pages = pages
	e.pageIndex = index
	e.fragments = make([]map[string]int, len(pages))
	for i := range e.fragments {
		e.fragments[i] = make(map[string]int)
	}
	return e.finish(StageParsed, started, nil)
}

// forEach runs fn for 0..n-1 on a bounded errgroup. The first error or a
// cancelled ctx stops the remaining work.
func (e *Engine) forEach(ctx context.Context, n int, fn func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Workers > 0 {
		g.SetLimit(e.cfg.Workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

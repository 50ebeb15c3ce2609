package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// LoaderConfig configures how page sources are discovered within a content root.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the supplied glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Source is one page as read from disk, before block parsing.
type Source struct {
	// ID is the slash separated path relative to the content root.
	ID          string
	FrontMatter FrontMatter
	Body        []byte
	// LineOffset is the number of source lines preceding Body.
	LineOffset int
}

// Loader turns content paths into page sources.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}

	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads a single page. A missing or unreadable file is an error.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel := cleanID(name)
	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}
	return ParseSource(rel, data)
}

// ParseSource builds a Source from raw bytes.
func ParseSource(id string, data []byte) (*Source, error) {
	fm, body, offset, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader %s: %w", id, err)
	}
	return &Source{
		ID:          cleanID(id),
		FrontMatter: fm,
		Body:        body,
		LineOffset:  offset,
	}, nil
}

// LoadPages reads the named pages in the given order.
func (l *Loader) LoadPages(ctx context.Context, names []string) ([]*Source, error) {
	out := make([]*Source, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		id := cleanID(name)
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("markdown loader: page %s listed twice", id)
		}
		seen[id] = struct{}{}
		src, err := l.LoadFile(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// LoadDirectory discovers pages under dir and returns them sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root := cleanID(dir)
	var names []string

	walkErr := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if !l.recursive && path.Clean(p) != root {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if l.matchesPattern(p) {
			names = append(names, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", root, walkErr)
	}

	sort.Strings(names)
	return l.LoadPages(ctx, names)
}

func (l *Loader) matchesPattern(p string) bool {
	pattern := filepath.ToSlash(l.pattern)
	if strings.Contains(pattern, "**") {
		// Basic support for ** by stripping repeated separators.
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := p
	if !strings.Contains(pattern, "/") {
		target = path.Base(p)
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func cleanID(name string) string {
	clean := path.Clean(filepath.ToSlash(strings.TrimSpace(name)))
	clean = strings.TrimPrefix(clean, "./")
	if clean == "" || clean == "/" {
		return "."
	}
	return strings.TrimPrefix(clean, "/")
}

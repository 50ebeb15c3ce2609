package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Category tags what an artifact is.
type Category string

const (
	CategoryPage     Category = "page"
	CategoryManifest Category = "manifest"
)

// WriteRequest describes one artifact write.
type WriteRequest struct {
	Path        string
	Content     []byte
	Category    Category
	ContentType string
	Checksum    string
}

// ArtifactWriter stores build outputs. Paths are slash separated and
// relative to the writer's root.
type ArtifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
}

var (
	errMissingPath    = errors.New("render: write requires path")
	errPathEscapesDir = errors.New("render: path escapes output directory")
)

// DirWriter writes artifacts below a directory on disk.
type DirWriter struct {
	root string
}

// NewDirWriter returns a writer rooted at dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{root: dir}
}

// Root returns the output directory.
func (w *DirWriter) Root() string { return w.root }

// Clean removes everything below the output directory.
func (w *DirWriter) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(w.root, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (w *DirWriter) resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errMissingPath
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errPathEscapesDir
	}
	return filepath.Join(w.root, clean), nil
}

func (w *DirWriter) EnsureDir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(p) == "" || p == "." {
		return os.MkdirAll(w.root, 0o755)
	}
	full, err := w.resolve(p)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

func (w *DirWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, req.Content, 0o644)
}

// MemoryWriter keeps artifacts in memory. The check command and tests use
// it in place of a directory.
type MemoryWriter struct {
	mu    sync.Mutex
	files map[string]WriteRequest
}

// NewMemoryWriter returns an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: map[string]WriteRequest{}}
}

func (w *MemoryWriter) EnsureDir(context.Context, string) error { return nil }

func (w *MemoryWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Path) == "" {
		return errMissingPath
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	req.Content = append([]byte(nil), req.Content...)
	w.files[req.Path] = req
	return nil
}

// File returns the content written at p.
func (w *MemoryWriter) File(p string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	req, ok := w.files[p]
	return req.Content, ok
}

// Paths lists written paths in lexical order.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

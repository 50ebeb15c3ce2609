package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-refdocs/document"
	"github.com/goliatone/go-refdocs/internal/expand"
)

const (
	ManifestFileName    = ".refdocs-manifest.json"
	manifestFileVersion = 1
)

// Manifest records what a build wrote and which anchors it exposes, so
// other tools can link into the output without re-running the build.
type Manifest struct {
	Version     int              `json:"version"`
	BuildID     string           `json:"build_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Format      Format           `json:"format"`
	Pages       []ManifestPage   `json:"pages"`
	Anchors     []ManifestAnchor `json:"anchors"`
	Diagnostics map[string]int   `json:"diagnostics,omitempty"`
}

type ManifestPage struct {
	Page     string `json:"page"`
	Title    string `json:"title,omitempty"`
	Module   string `json:"module,omitempty"`
	Output   string `json:"output"`
	Checksum string `json:"checksum"`
}

type ManifestAnchor struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Page      string `json:"page"`
	Fragment  string `json:"fragment"`
	Title     string `json:"title"`
	Module    string `json:"module,omitempty"`
	Contested bool   `json:"contested,omitempty"`
}

func newManifest(res *expand.Result, format Format, at time.Time) *Manifest {
	m := &Manifest{
		Version:     manifestFileVersion,
		BuildID:     res.BuildID,
		GeneratedAt: at.UTC(),
		Format:      format,
		Pages:       make([]ManifestPage, 0, len(res.Pages)),
		Anchors:     make([]ManifestAnchor, 0, len(res.Anchors)),
	}
	for _, a := range res.Anchors {
		m.Anchors = append(m.Anchors, manifestAnchor(a))
	}
	if len(res.Summary.ByKind) > 0 {
		m.Diagnostics = map[string]int{}
		for kind, n := range res.Summary.ByKind {
			m.Diagnostics[string(kind)] = n
		}
	}
	return m
}

func manifestAnchor(a document.Anchor) ManifestAnchor {
	out := ManifestAnchor{
		Kind:      a.Key.Origin.String(),
		ID:        a.Key.ID,
		Page:      a.Page,
		Fragment:  a.Fragment,
		Title:     a.Title,
		Contested: a.Contested,
	}
	if a.Symbol != nil {
		out.Module = a.Symbol.Module
	}
	return out
}

func (m *Manifest) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes a manifest written by a previous build.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("render: parse manifest: %w", err)
	}
	if m.Version == 0 {
		m.Version = manifestFileVersion
	}
	return &m, nil
}

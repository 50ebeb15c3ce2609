package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the page metadata recognised by the build.
type FrontMatter struct {
	Title string
	// CurrentModule seeds the page module context.
	CurrentModule string
	Custom        map[string]any
}

// ParseFrontMatter extracts metadata and the markdown body from source. It
// also returns how many source lines the front matter block occupied so body
// line numbers can be mapped back to the file.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, int, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, 0, fmt.Errorf("parse frontmatter: %w", err)
	}

	offset := 0
	if len(body) < len(source) && bytes.HasSuffix(source, body) {
		offset = bytes.Count(source[:len(source)-len(body)], []byte("\n"))
	}

	return envelopeToFrontMatter(meta), body, offset, nil
}

type frontMatterEnvelope struct {
	Title         string         `yaml:"title" toml:"title" json:"title"`
	CurrentModule string         `yaml:"current_module" toml:"current_module" json:"current_module"`
	Module        string         `yaml:"module" toml:"module" json:"module"`
	Custom        map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	module := strings.TrimSpace(env.CurrentModule)
	if module == "" {
		module = strings.TrimSpace(env.Module)
	}
	return FrontMatter{
		Title:         strings.TrimSpace(env.Title),
		CurrentModule: module,
		Custom:        cloneMap(env.Custom),
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

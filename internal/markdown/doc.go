// Package markdown reads page sources and exposes the small slice of markdown
// structure the build needs: front matter, top-level headings and fences, and
// inline @ref links. Parsing is delegated to goldmark; nothing here renders.
// HTML output lives in GoldmarkParser and is only used by the renderer.
package markdown

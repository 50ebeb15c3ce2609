// Package render turns resolved page trees back into markdown, or HTML via
// goldmark, and writes them through an ArtifactWriter together with a build
// manifest listing every anchor.
package render

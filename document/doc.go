// Package document holds the typed model shared by every stage of the build:
// pages, their blocks, cross-reference links, target specs and anchors.
//
// Blocks form a closed set of variants (Markdown, Heading, Directive,
// ResolvedContent). Parsing produces the first three; expansion replaces each
// Directive with exactly one ResolvedContent, so a fully built page contains
// no Directive blocks.
package document

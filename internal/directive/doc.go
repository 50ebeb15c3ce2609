// Package directive turns a page source into a document.Page: top-level
// headings, directive fences and the ordinary markdown between them. Directive
// bodies are parsed into target specs and typed settings here; expansion is
// left to the engine.
package directive

// Package diagnostics collects the non-fatal problems raised while a document
// set is built. Diagnostics are appended in the order they are raised and read
// once at the end of the build; whether any of them fails the build is decided
// by the caller.
package diagnostics

// Package internal contains the core implementation packages for mdfx.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the mdfx CLI tool.
//
// # Package Organization
//
// The internal packages are organized by pipeline stage:
//
//   - scanner: code-fence-aware tokenizer that finds tag candidates
//   - parser: tag resolution against the registry and AST construction
//   - expander: component template substitution into primitive nodes
//   - renderer: per-target emission (Unicode text, shields.io, local SVG)
//   - assets: content-addressed SVG cache with a persisted manifest
//   - registry: style/frame/badge/glyph/component/palette definitions
//   - charmap: compiled per-style Unicode codepoint mapping
//   - svg: geometry renderers for the generated visual primitives
//   - pipeline: full-document processing and concurrent batch runs
//   - watcher: file system monitoring with debouncing
//   - config, logging, errors, types, version: shared plumbing
//
// # Inter-Package Communication
//
// The parser owns the primitive AST until it hands it to the expander; the
// renderer borrows the expanded tree read-only. The asset cache is the only
// shared mutable state in a batch run and serializes its own writes.
package internal

// Package domain defines the core business entities for kbuild.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded fragment of source text with provenance
//   - Post: A discussion post as exported from the forum
//   - RawDocument: Opaque bytes of an archived documentation page
//   - Settings: Run configuration, immutable for the length of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

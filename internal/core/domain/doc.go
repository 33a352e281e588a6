// Package domain defines the core entities for the galaxy generator.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes from a connector
//   - Post: A normalised blog post ready for embedding
//   - Coordinate: A 2D position produced by the projector
//   - GalaxyPoint: One record of the visualisation dataset
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

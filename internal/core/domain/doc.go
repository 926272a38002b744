// Package domain defines the core business entities for twinsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProfileDocument: The structured profile being migrated
//   - ContentChunk: A retrieval unit written to both stores
//   - IndexedVector: The vector-store projection of a chunk
//   - SearchQuery, SearchResult, QueryMetrics: Retrieval quality fixtures and scores
//   - ReconciliationReport, HarnessReport, ValidationReport: Audit output
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

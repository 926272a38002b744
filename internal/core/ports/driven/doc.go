// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RelationalStore: Structured records and content chunks (SQLite or Postgres)
//   - VectorStore: Text-in similarity search with metadata filters (Upstash, chromem, memory)
//   - ProfileLoader: Reads the source profile document
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil or absent - the application degrades gracefully:
//
//   - VectorLister: Full id enumeration. Without it, reconciliation samples ids.
//   - ContentCache: Caches resolved chunk content (Redis).
//   - ReportWriter: Persists validation reports.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

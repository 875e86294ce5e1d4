// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Chunk persistence (SQLite)
//   - RunStore: Backfill run log
//   - PostSource, DocumentSource: Raw inputs
//   - Normaliser: Document header parsing
//   - Chunker: Fixed-size window splitting
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - EmbeddingService: Generates vector embeddings. Without it, ingestion
//     still works and the backfill reports domain.ErrEmbeddingUnavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven

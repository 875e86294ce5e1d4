// Package sqlite provides the SQLite-backed chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single Store implements:
//
//   - ChunkStore: the discourse_chunks and markdown_chunks tables
//   - RunStore: the backfill_runs log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Embeddings
//
// Vectors are stored as UTF-8 JSON arrays of numbers in a BLOB column, which keeps
// them readable by any SQLite client. A NULL embedding marks a row as pending.
//
// # Thread Safety
//
// The store holds one connection. SQLite serialises writers and WAL mode lets
// readers proceed alongside them.
package sqlite

package driven

import (
	"context"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

// ChunkStore persists chunks in two parallel tables, one per source kind.
// Backed by SQLite; a single handle is opened per run and shared by
// ingestion and backfill.
type ChunkStore interface {
	// Initialize ensures both chunk tables exist. Safe to call repeatedly.
	Initialize(ctx context.Context) error

	// InsertChunk appends a chunk with a NULL embedding and sets chunk.ID.
	// No deduplication is performed; re-ingesting a parent duplicates its rows.
	InsertChunk(ctx context.Context, chunk *domain.Chunk) error

	// InsertChunks appends all chunks of one parent in a single transaction
	// and sets each chunk's ID.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// FetchUnembedded returns (id, content) of every row of the kind whose
	// embedding is NULL, in ascending id order.
	FetchUnembedded(ctx context.Context, kind domain.SourceKind) ([]domain.PendingChunk, error)

	// SetEmbedding stores the vector on exactly one row and commits it.
	// Returns domain.ErrNotFound if no row has that id.
	SetEmbedding(ctx context.Context, kind domain.SourceKind, id int64, vector []float64) error

	// Stats counts total and embedded rows of the kind.
	Stats(ctx context.Context, kind domain.SourceKind) (domain.ChunkStats, error)

	// Close releases the underlying handle.
	Close() error
}

// RunStore records backfill runs so a later status call can report them.
type RunStore interface {
	// SaveRun stores or updates a run by its RunID.
	SaveRun(ctx context.Context, report *domain.BackfillReport) error

	// LastRun returns the most recently started run.
	// Returns domain.ErrNotFound if no run was recorded yet.
	LastRun(ctx context.Context) (*domain.BackfillReport, error)
}

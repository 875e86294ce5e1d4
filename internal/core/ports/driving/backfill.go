package driving

import (
	"context"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

// Backfiller attaches embeddings to every chunk that lacks one.
type Backfiller interface {
	// Run embeds all pending rows, table by table, committing each row as it
	// completes. On failure the returned report still counts the committed rows.
	Run(ctx context.Context) (*domain.BackfillReport, error)

	// Status reports per-table counts and the last recorded run.
	Status(ctx context.Context) (*StoreStatus, error)
}

// StoreStatus is a snapshot of the knowledge base.
type StoreStatus struct {
	// Kinds holds one entry per table, in backfill order.
	Kinds []domain.ChunkStats

	// LastRun is nil when no backfill has been recorded.
	LastRun *domain.BackfillReport
}

// Pending returns the number of rows across all tables still lacking an embedding.
func (s *StoreStatus) Pending() int {
	total := 0
	for _, k := range s.Kinds {
		total += k.Pending()
	}
	return total
}

// ProgressFunc is called after each committed row with the running count
// and the table's pending total.
type ProgressFunc func(kind domain.SourceKind, done, total int)

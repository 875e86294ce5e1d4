package domain

import "time"

// IngestReport summarises one ingestion pass over a source.
type IngestReport struct {
	Kind SourceKind

	// Parents is the number of posts or documents successfully ingested.
	Parents int

	// Chunks is the number of chunk rows written.
	Chunks int

	// Failed is the number of parents skipped because of a per-item error.
	Failed int
}

// KindProgress is the backfill outcome for one table.
type KindProgress struct {
	Kind     SourceKind
	Pending  int
	Embedded int
}

// BackfillReport summarises one embedding backfill run.
type BackfillReport struct {
	// RunID identifies the run in the store's run log.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time

	// Kinds holds one entry per table that was visited, in visit order.
	Kinds []KindProgress

	// FailedKind is set when a table aborted the run.
	FailedKind SourceKind

	// Error is the failure message, empty on success.
	Error string
}

// Embedded returns the total number of rows embedded across all tables.
func (r *BackfillReport) Embedded() int {
	total := 0
	for _, k := range r.Kinds {
		total += k.Embedded
	}
	return total
}

// Succeeded reports whether the run finished without error.
func (r *BackfillReport) Succeeded() bool {
	return r.Error == ""
}

package driving

import (
	"context"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

// Ingestor turns source records into chunk rows.
type Ingestor interface {
	// Ingest reads the configured source of the given kind and writes its chunks.
	// Per-document header errors are counted in the report, not returned.
	Ingest(ctx context.Context, kind domain.SourceKind) (*domain.IngestReport, error)
}

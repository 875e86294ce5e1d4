package driven

import (
	"context"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

// PostSource yields discussion posts with HTML already stripped.
type PostSource interface {
	// Posts returns every post of the export, in export order.
	Posts(ctx context.Context) ([]domain.Post, error)
}

// DocumentSource yields archived documentation pages.
type DocumentSource interface {
	// Documents returns every page in a stable order.
	Documents(ctx context.Context) ([]domain.RawDocument, error)
}

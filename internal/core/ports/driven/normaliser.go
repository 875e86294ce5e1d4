package driven

import (
	"context"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

// Normaliser separates a documentation page into header metadata and body.
type Normaliser interface {
	// Normalise parses the optional header of a raw document.
	// A header missing a required field fails with domain.ErrMalformedDocument.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking of Content is left to the Chunker.
type NormaliseResult struct {
	// Metadata holds the header fields; empty when HasHeader is false.
	Metadata domain.DocumentMeta

	// Content is the text after the header, not yet whitespace-normalised.
	Content string

	// HasHeader reports whether a header block was found.
	HasHeader bool
}

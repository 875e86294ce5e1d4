package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap them with context; callers test with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// An update aimed at a missing chunk row is a logic defect and is fatal.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedDocument indicates a document header is present but a
	// required field is missing. It aborts that document only.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmbeddingService indicates the embedding service failed: network
	// error, non-2xx status, or a response without the expected fields.
	// It aborts the remainder of the backfill; committed rows are kept.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the chunk store cannot be opened or written.
	ErrStoreUnavailable = errors.New("store unavailable")
)

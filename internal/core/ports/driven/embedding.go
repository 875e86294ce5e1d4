package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// A single model and endpoint are configured for the whole run.
type EmbeddingService interface {
	// Embed sends one textual input and returns the first vector of the response.
	// Failures wrap domain.ErrEmbeddingService.
	Embed(ctx context.Context, text string) ([]float64, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

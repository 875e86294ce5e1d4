package domain

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingBaseURL  = "https://aipipe.org/openai/v1"
	DefaultEmbeddingTimeout  = 60 * time.Second
	DefaultStorePath         = "knowledge_base.db"
	DefaultDiscourseFile     = "downloaded_threads/discourse_posts.json"
	DefaultMarkdownDir       = "markdown_files"
	DefaultBackfillWorkers   = 1
	DefaultProgressInterval  = 25
	DefaultRequestsPerSecond = 0
)

// ChunkSettings configures the fixed-size window chunker.
type ChunkSettings struct {
	// Size is the window width in characters.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// StripMarkdown removes Markdown formatting from document bodies before
	// splitting. Off by default so bodies are chunked verbatim.
	StripMarkdown bool
}

// EmbeddingSettings configures the embedding service and the backfill.
type EmbeddingSettings struct {
	// Model is the embedding model identifier, fixed for a run.
	Model string

	// BaseURL is the OpenAI-compatible API root; requests go to BaseURL + "/embeddings".
	BaseURL string

	// APIKey is the bearer credential. It is never written to the config file.
	APIKey string

	// Timeout bounds a single embedding request.
	Timeout time.Duration

	// Concurrency is the number of in-flight requests. 1 keeps the strict
	// request, commit, next ordering.
	Concurrency int

	// RequestsPerSecond paces requests; 0 disables pacing.
	RequestsPerSecond float64
}

// SourceSettings locates the raw inputs.
type SourceSettings struct {
	// DiscourseFile is the JSON export of discussion posts.
	DiscourseFile string

	// MarkdownDir holds the archived documentation pages.
	MarkdownDir string
}

// Settings is the full run configuration.
// It is enumerated at process start and immutable during a run.
type Settings struct {
	Chunk     ChunkSettings
	Embedding EmbeddingSettings
	Sources   SourceSettings

	// StorePath is the SQLite database file.
	StorePath string

	// ProgressInterval is how many rows pass between progress reports.
	ProgressInterval int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Chunk: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Model:             DefaultEmbeddingModel,
			BaseURL:           DefaultEmbeddingBaseURL,
			Timeout:           DefaultEmbeddingTimeout,
			Concurrency:       DefaultBackfillWorkers,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Sources: SourceSettings{
			DiscourseFile: DefaultDiscourseFile,
			MarkdownDir:   DefaultMarkdownDir,
		},
		StorePath:        DefaultStorePath,
		ProgressInterval: DefaultProgressInterval,
	}
}

// Validate checks the settings for values no component can work with.
func (s *Settings) Validate() error {
	if s.Chunk.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, s.Chunk.Size)
	}
	if s.Chunk.Overlap < 0 || s.Chunk.Overlap >= s.Chunk.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidInput, s.Chunk.Size, s.Chunk.Overlap)
	}
	if s.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding model is required", ErrInvalidInput)
	}
	if s.Embedding.BaseURL == "" {
		return fmt.Errorf("%w: embedding base URL is required", ErrInvalidInput)
	}
	if s.Embedding.Concurrency < 1 {
		return fmt.Errorf("%w: embedding concurrency must be at least 1, got %d",
			ErrInvalidInput, s.Embedding.Concurrency)
	}
	if s.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidInput)
	}
	if s.StorePath == "" {
		return fmt.Errorf("%w: store path is required", ErrInvalidInput)
	}
	return nil
}

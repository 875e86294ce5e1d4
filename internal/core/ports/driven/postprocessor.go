package driven

// Chunker splits normalised text into ordered fixed-size windows.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Split returns at least one chunk; empty text yields a single empty chunk.
	Split(text string) []string
}

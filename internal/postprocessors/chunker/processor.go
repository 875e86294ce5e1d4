// Package chunker provides a fixed-size overlapping window text chunker.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits text into fixed-size windows that overlap by a fixed
// number of characters. Characters are Unicode code points.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// It fails with domain.ErrInvalidInput unless overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window width.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows of ChunkSize characters, each starting
// ChunkSize-Overlap characters after the previous one. Text that fits in a
// single window, including the empty string, is returned whole.
func (p *Processor) Split(text string) []string {
	if isASCII(text) {
		return splitBytes(text, p.chunkSize, p.overlap)
	}
	return splitRunes(text, p.chunkSize, p.overlap)
}

func splitBytes(text string, size, overlap int) []string {
	n := len(text)
	if n <= size {
		return []string{text}
	}

	step := size - overlap
	chunks := make([]string, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+size, n)
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

func splitRunes(text string, size, overlap int) []string {
	runes := []rune(text)
	n := len(runes)
	if n <= size {
		return []string{text}
	}

	step := size - overlap
	chunks := make([]string, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := min(start+size, n)
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Normalise prepares text for chunking: newlines become spaces and
// surrounding whitespace is trimmed. Inner runs of spaces are kept so
// chunk offsets stay aligned with the source text.
func Normalise(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

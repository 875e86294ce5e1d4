package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interfaces.
var (
	_ driven.ChunkStore = (*ChunkStore)(nil)
	_ driven.RunStore   = (*ChunkStore)(nil)
)

// ChunkStore is an in-memory implementation of driven.ChunkStore and
// driven.RunStore. Ids are assigned per kind starting at 1.
type ChunkStore struct {
	mu     sync.RWMutex
	tables map[domain.SourceKind][]domain.Chunk
	nextID map[domain.SourceKind]int64
	runs   []domain.BackfillReport
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		tables: make(map[domain.SourceKind][]domain.Chunk),
		nextID: make(map[domain.SourceKind]int64),
	}
}

// Initialize is a no-op; tables exist from construction.
func (s *ChunkStore) Initialize(_ context.Context) error {
	return nil
}

// InsertChunk appends a chunk and sets its ID.
func (s *ChunkStore) InsertChunk(_ context.Context, chunk *domain.Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: nil chunk", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(chunk)
}

// InsertChunks appends the chunks of one parent atomically.
func (s *ChunkStore) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		if err := validate(&chunks[i]); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		if err := s.insertLocked(&chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

func validate(chunk *domain.Chunk) error {
	if !chunk.Kind.IsValid() {
		return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, chunk.Kind)
	}
	if chunk.Kind == domain.SourceKindPost && chunk.Post == nil {
		return fmt.Errorf("%w: post chunk without post metadata", domain.ErrInvalidInput)
	}
	return nil
}

func (s *ChunkStore) insertLocked(chunk *domain.Chunk) error {
	if err := validate(chunk); err != nil {
		return err
	}

	s.nextID[chunk.Kind]++
	chunk.ID = s.nextID[chunk.Kind]
	chunk.Embedding = nil

	stored := *chunk
	if chunk.Post != nil {
		meta := *chunk.Post
		stored.Post = &meta
	}
	if chunk.Kind == domain.SourceKindDocument {
		meta := domain.DocumentMeta{}
		if chunk.Document != nil {
			meta = *chunk.Document
		}
		stored.Document = &meta
	}

	s.tables[chunk.Kind] = append(s.tables[chunk.Kind], stored)
	return nil
}

// FetchUnembedded returns every pending row of the kind in ascending id order.
func (s *ChunkStore) FetchUnembedded(_ context.Context, kind domain.SourceKind) ([]domain.PendingChunk, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []domain.PendingChunk //nolint:prealloc // filtered
	for _, c := range s.tables[kind] {
		if c.Embedding == nil {
			pending = append(pending, domain.PendingChunk{ID: c.ID, Content: c.Content})
		}
	}
	return pending, nil
}

// SetEmbedding stores a copy of the vector on one row.
func (s *ChunkStore) SetEmbedding(_ context.Context, kind domain.SourceKind, id int64, vector []float64) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding for %s row %d", domain.ErrInvalidInput, kind, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[kind]
	i := sort.Search(len(rows), func(i int) bool { return rows[i].ID >= id })
	if i == len(rows) || rows[i].ID != id {
		return fmt.Errorf("%s row %d: %w", kind, id, domain.ErrNotFound)
	}

	rows[i].Embedding = append([]float64(nil), vector...)
	return nil
}

// Stats counts total and embedded rows of the kind.
func (s *ChunkStore) Stats(_ context.Context, kind domain.SourceKind) (domain.ChunkStats, error) {
	stats := domain.ChunkStats{Kind: kind}
	if !kind.IsValid() {
		return stats, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.tables[kind] {
		stats.Total++
		if c.IsEmbedded() {
			stats.Embedded++
		}
	}
	return stats, nil
}

// Chunks returns a copy of every row of the kind in id order.
func (s *ChunkStore) Chunks(kind domain.SourceKind) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.tables[kind]...)
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}

// SaveRun stores or updates a run by its RunID.
func (s *ChunkStore) SaveRun(_ context.Context, report *domain.BackfillReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *report
	saved.Kinds = append([]domain.KindProgress(nil), report.Kinds...)
	for i := range s.runs {
		if s.runs[i].RunID == report.RunID {
			s.runs[i] = saved
			return nil
		}
	}
	s.runs = append(s.runs, saved)
	return nil
}

// LastRun returns the most recently started run.
func (s *ChunkStore) LastRun(_ context.Context) (*domain.BackfillReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}

	last := 0
	for i := range s.runs {
		if !s.runs[i].StartedAt.Before(s.runs[last].StartedAt) {
			last = i
		}
	}
	run := s.runs[last]
	return &run, nil
}

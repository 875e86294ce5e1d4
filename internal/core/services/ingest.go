package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
	"github.com/custodia-labs/kbuild/internal/core/ports/driving"
	"github.com/custodia-labs/kbuild/internal/logger"
	"github.com/custodia-labs/kbuild/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService splits source records into chunk rows.
// It only writes: re-ingesting a source appends a second copy of its rows.
type IngestService struct {
	store      driven.ChunkStore
	chunker    driven.Chunker
	normaliser driven.Normaliser
	posts      driven.PostSource
	documents  driven.DocumentSource
}

// NewIngestService creates a new ingestion service.
// posts and documents may be nil when the matching kind is never ingested.
func NewIngestService(
	store driven.ChunkStore,
	splitter driven.Chunker,
	normaliser driven.Normaliser,
	posts driven.PostSource,
	documents driven.DocumentSource,
) *IngestService {
	return &IngestService{
		store:      store,
		chunker:    splitter,
		normaliser: normaliser,
		posts:      posts,
		documents:  documents,
	}
}

// Ingest reads the source of the given kind and writes its chunks.
func (s *IngestService) Ingest(ctx context.Context, kind domain.SourceKind) (*domain.IngestReport, error) {
	switch kind {
	case domain.SourceKindPost:
		if s.posts == nil {
			return nil, fmt.Errorf("%w: no post source configured", domain.ErrInvalidInput)
		}
		posts, err := s.posts.Posts(ctx)
		if err != nil {
			return nil, fmt.Errorf("read posts: %w", err)
		}
		return s.IngestPosts(ctx, posts)

	case domain.SourceKindDocument:
		if s.documents == nil {
			return nil, fmt.Errorf("%w: no document source configured", domain.ErrInvalidInput)
		}
		docs, err := s.documents.Documents(ctx)
		if err != nil {
			return nil, fmt.Errorf("read documents: %w", err)
		}
		return s.IngestDocuments(ctx, docs)

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}
}

// IngestPosts writes one row per window of each post's normalised content.
// Every row of a post carries the post's metadata.
func (s *IngestService) IngestPosts(ctx context.Context, posts []domain.Post) (*domain.IngestReport, error) {
	report := &domain.IngestReport{Kind: domain.SourceKindPost}
	logger.Section("Ingest discussion posts")

	for i := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		post := &posts[i]
		meta := post.Meta()
		fragments := s.chunker.Split(chunker.Normalise(post.Content))

		chunks := make([]domain.Chunk, len(fragments))
		for j, text := range fragments {
			postMeta := meta
			chunks[j] = domain.Chunk{
				Kind:    domain.SourceKindPost,
				Post:    &postMeta,
				Index:   j,
				Content: text,
			}
		}

		if err := s.store.InsertChunks(ctx, chunks); err != nil {
			return report, fmt.Errorf("insert post %d: %w", post.PostID, err)
		}

		report.Parents++
		report.Chunks += len(chunks)
		logger.Debug("post %d: %d chunks", post.PostID, len(chunks))
	}

	logger.Info("Ingested %d posts into %d chunks", report.Parents, report.Chunks)
	return report, nil
}

// IngestDocuments parses each page's header, then writes one row per window
// of the normalised body. A page whose header lacks a required field is
// skipped and counted in report.Failed.
func (s *IngestService) IngestDocuments(ctx context.Context, docs []domain.RawDocument) (*domain.IngestReport, error) {
	report := &domain.IngestReport{Kind: domain.SourceKindDocument}
	logger.Section("Ingest documents")

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		raw := &docs[i]
		result, err := s.normaliser.Normalise(ctx, raw)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedDocument) {
				report.Failed++
				logger.Warn("skipping document: %v", err)
				continue
			}
			return report, fmt.Errorf("normalise %s: %w", raw.URI, err)
		}

		if !result.HasHeader {
			logger.Debug("%s: no header, storing without metadata", raw.URI)
		}

		fragments := s.chunker.Split(chunker.Normalise(result.Content))
		chunks := make([]domain.Chunk, len(fragments))
		for j, text := range fragments {
			docMeta := result.Metadata
			chunks[j] = domain.Chunk{
				Kind:     domain.SourceKindDocument,
				Document: &docMeta,
				Index:    j,
				Content:  text,
			}
		}

		if err := s.store.InsertChunks(ctx, chunks); err != nil {
			return report, fmt.Errorf("insert %s: %w", raw.URI, err)
		}

		report.Parents++
		report.Chunks += len(chunks)
		logger.Debug("%s: %d chunks", raw.URI, len(chunks))
	}

	logger.Info("Ingested %d documents into %d chunks (%d skipped)",
		report.Parents, report.Chunks, report.Failed)
	return report, nil
}

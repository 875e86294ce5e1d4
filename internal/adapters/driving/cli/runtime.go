package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbuild/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbuild/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/kbuild/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbuild/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kbuild/internal/connectors/discourse"
	"github.com/custodia-labs/kbuild/internal/connectors/filesystem"
	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
	"github.com/custodia-labs/kbuild/internal/core/ports/driving"
	"github.com/custodia-labs/kbuild/internal/core/services"
	"github.com/custodia-labs/kbuild/internal/logger"
	"github.com/custodia-labs/kbuild/internal/normalisers/markdown"
	"github.com/custodia-labs/kbuild/internal/postprocessors/chunker"
)

// runtime holds the adapters shared by the commands of one invocation.
// A single store handle serves ingestion, backfill and status.
type runtime struct {
	settings  domain.Settings
	config    driven.ConfigStore
	store     driven.ChunkStore
	runs      driven.RunStore
	posts     driven.PostSource
	documents driven.DocumentSource

	newEmbedder func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
}

// openRuntime builds the runtime for a command. Replaced in tests.
var openRuntime = defaultRuntime

// defaultRuntime loads .env and the config file, applies flag overrides and
// opens the knowledge base, creating its tables if needed.
func defaultRuntime(ctx context.Context) (*runtime, error) {
	if err := file.LoadEnv(); err != nil {
		return nil, err
	}

	cfg, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	settings, err := file.LoadSettings(cfg)
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		settings.StorePath = storePath
	}
	settings.Embedding.APIKey = file.LoadAPIKey()

	store, err := sqlite.NewStore(settings.StorePath)
	if err != nil {
		return nil, err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Debug("knowledge base %s ready", store.Path())

	return &runtime{
		settings:    settings,
		config:      cfg,
		store:       store,
		runs:        store,
		posts:       discourse.New(settings.Sources.DiscourseFile),
		documents:   filesystem.New(settings.Sources.MarkdownDir),
		newEmbedder: ai.CreateEmbeddingService,
	}, nil
}

// Close releases the store handle.
func (r *runtime) Close() error {
	return r.store.Close()
}

// ingestor builds the ingestion service.
// A dry run writes to a throwaway in-memory store.
func (r *runtime) ingestor(dryRun bool) (driving.Ingestor, error) {
	splitter, err := chunker.New(
		chunker.WithChunkSize(r.settings.Chunk.Size),
		chunker.WithOverlap(r.settings.Chunk.Overlap),
	)
	if err != nil {
		return nil, err
	}

	store := r.store
	if dryRun {
		store = memory.NewChunkStore()
	}

	normaliser := markdown.New(markdown.WithStripMarkdown(r.settings.Chunk.StripMarkdown))
	return services.NewIngestService(store, splitter, normaliser, r.posts, r.documents), nil
}

// embedder creates the configured embedding service, paced when a request
// rate is set.
func (r *runtime) embedder() (driven.EmbeddingService, error) {
	svc, err := r.newEmbedder(&r.settings.Embedding)
	if err != nil {
		return nil, err
	}
	return ratelimit.Wrap(svc, r.settings.Embedding.RequestsPerSecond, ratelimit.DefaultBurst), nil
}

// backfiller builds the backfill service around a fresh embedder.
// The returned func releases the embedder.
func (r *runtime) backfiller(progress driving.ProgressFunc) (driving.Backfiller, func(), error) {
	embedder, err := r.embedder()
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewBackfillService(r.store, r.runs, embedder,
		services.WithWorkers(r.settings.Embedding.Concurrency),
		services.WithProgress(progress, r.settings.ProgressInterval),
	)
	return svc, func() { _ = embedder.Close() }, nil
}

// status reads store counts; it needs no embedding service.
func (r *runtime) status(ctx context.Context) (*driving.StoreStatus, error) {
	return services.NewBackfillService(r.store, r.runs, nil).Status(ctx)
}

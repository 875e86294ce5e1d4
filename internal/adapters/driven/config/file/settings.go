package file

import (
	"fmt"
	"time"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyChunkSize                  = "chunk.size"
	KeyChunkOverlap               = "chunk.overlap"
	KeyChunkStripMarkdown         = "chunk.strip_markdown"
	KeyEmbeddingModel             = "embedding.model"
	KeyEmbeddingBaseURL           = "embedding.base_url"
	KeyEmbeddingConcurrency       = "embedding.concurrency"
	KeyEmbeddingRequestsPerSecond = "embedding.requests_per_second"
	KeyEmbeddingTimeoutSeconds    = "embedding.timeout_seconds"
	KeyStorePath                  = "store.path"
	KeySourcesDiscourseFile       = "sources.discourse_file"
	KeySourcesMarkdownDir         = "sources.markdown_dir"
	KeyProgressInterval           = "progress.interval"
)

// LoadSettings builds run settings from the defaults overlaid with every key
// present in store. The API key is not read here; see LoadAPIKey.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	s := domain.DefaultSettings()

	intKey(store, KeyChunkSize, &s.Chunk.Size)
	intKey(store, KeyChunkOverlap, &s.Chunk.Overlap)
	boolKey(store, KeyChunkStripMarkdown, &s.Chunk.StripMarkdown)
	stringKey(store, KeyEmbeddingModel, &s.Embedding.Model)
	stringKey(store, KeyEmbeddingBaseURL, &s.Embedding.BaseURL)
	intKey(store, KeyEmbeddingConcurrency, &s.Embedding.Concurrency)
	if _, ok := store.Get(KeyEmbeddingRequestsPerSecond); ok {
		s.Embedding.RequestsPerSecond = store.GetFloat(KeyEmbeddingRequestsPerSecond)
	}
	if _, ok := store.Get(KeyEmbeddingTimeoutSeconds); ok {
		s.Embedding.Timeout = time.Duration(store.GetFloat(KeyEmbeddingTimeoutSeconds) * float64(time.Second))
	}
	stringKey(store, KeyStorePath, &s.StorePath)
	stringKey(store, KeySourcesDiscourseFile, &s.Sources.DiscourseFile)
	stringKey(store, KeySourcesMarkdownDir, &s.Sources.MarkdownDir)
	intKey(store, KeyProgressInterval, &s.ProgressInterval)

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", store.Path(), err)
	}
	return s, nil
}

// WriteDefaults stores every default setting the file does not already
// carry, then saves. Existing values are left untouched.
func WriteDefaults(store driven.ConfigStore) error {
	d := domain.DefaultSettings()
	defaults := []struct {
		key   string
		value any
	}{
		{KeyChunkSize, int64(d.Chunk.Size)},
		{KeyChunkOverlap, int64(d.Chunk.Overlap)},
		{KeyChunkStripMarkdown, d.Chunk.StripMarkdown},
		{KeyEmbeddingModel, d.Embedding.Model},
		{KeyEmbeddingBaseURL, d.Embedding.BaseURL},
		{KeyEmbeddingConcurrency, int64(d.Embedding.Concurrency)},
		{KeyEmbeddingRequestsPerSecond, d.Embedding.RequestsPerSecond},
		{KeyEmbeddingTimeoutSeconds, int64(d.Embedding.Timeout / time.Second)},
		{KeyStorePath, d.StorePath},
		{KeySourcesDiscourseFile, d.Sources.DiscourseFile},
		{KeySourcesMarkdownDir, d.Sources.MarkdownDir},
		{KeyProgressInterval, int64(d.ProgressInterval)},
	}

	for _, kv := range defaults {
		if _, ok := store.Get(kv.key); ok {
			continue
		}
		if err := store.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("setting %s: %w", kv.key, err)
		}
	}
	return store.Save()
}

func intKey(store driven.ConfigStore, key string, dst *int) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetInt(key)
	}
}

func boolKey(store driven.ConfigStore, key string, dst *bool) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetBool(key)
	}
}

func stringKey(store driven.ConfigStore, key string, dst *string) {
	if v := store.GetString(key); v != "" {
		*dst = v
	}
}

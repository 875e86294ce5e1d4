package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbuild/internal/core/domain"
)

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := LoadSettings(memory.NewConfigStore())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestLoadSettings_Overrides(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyChunkSize:                  int64(500),
		KeyChunkOverlap:               int64(50),
		KeyChunkStripMarkdown:         true,
		KeyEmbeddingModel:             "text-embedding-3-large",
		KeyEmbeddingBaseURL:           "http://localhost:8080/v1",
		KeyEmbeddingConcurrency:       int64(4),
		KeyEmbeddingRequestsPerSecond: 2.5,
		KeyEmbeddingTimeoutSeconds:    int64(15),
		KeyStorePath:                  "data/kb.db",
		KeySourcesDiscourseFile:       "posts.json",
		KeySourcesMarkdownDir:         "pages",
		KeyProgressInterval:           int64(10),
	})

	settings, err := LoadSettings(store)
	require.NoError(t, err)

	assert.Equal(t, domain.ChunkSettings{Size: 500, Overlap: 50, StripMarkdown: true}, settings.Chunk)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:8080/v1", settings.Embedding.BaseURL)
	assert.Equal(t, 4, settings.Embedding.Concurrency)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, 15*time.Second, settings.Embedding.Timeout)
	assert.Equal(t, "data/kb.db", settings.StorePath)
	assert.Equal(t, "posts.json", settings.Sources.DiscourseFile)
	assert.Equal(t, "pages", settings.Sources.MarkdownDir)
	assert.Equal(t, 10, settings.ProgressInterval)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestLoadSettings_ZeroOverlapIsKept(t *testing.T) {
	settings, err := LoadSettings(memory.NewConfigStore(map[string]any{KeyChunkOverlap: int64(0)}))
	require.NoError(t, err)
	assert.Equal(t, 0, settings.Chunk.Overlap)
}

func TestLoadSettings_Invalid(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyChunkSize:    int64(100),
		KeyChunkOverlap: int64(100),
	})

	_, err := LoadSettings(store)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), ":memory:")
}

func TestWriteDefaults(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(KeyStorePath, "custom.db"))

	require.NoError(t, WriteDefaults(store))

	reloaded, err := NewConfigStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "custom.db", reloaded.GetString(KeyStorePath))
	assert.Equal(t, domain.DefaultChunkSize, reloaded.GetInt(KeyChunkSize))
	assert.Equal(t, domain.DefaultEmbeddingModel, reloaded.GetString(KeyEmbeddingModel))

	settings, err := LoadSettings(reloaded)
	require.NoError(t, err)
	want := domain.DefaultSettings()
	want.StorePath = "custom.db"
	assert.Equal(t, want, settings)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbuild/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbuild/internal/connectors/discourse"
	"github.com/custodia-labs/kbuild/internal/connectors/filesystem"
	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
	"github.com/custodia-labs/kbuild/internal/logger"
)

// fakeEmbedder returns a one-dimensional vector per text. When failAt is
// set, the call with that 1-based number fails.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failAt int
	pings  int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, fmt.Errorf("%w: status 500", domain.ErrEmbeddingService)
	}
	return []float64{float64(len(text))}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func (f *fakeEmbedder) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return nil
}

func (f *fakeEmbedder) Close() error { return nil }

type testEnv struct {
	rt       *runtime
	store    *memory.ChunkStore
	config   *memory.ConfigStore
	embedder *fakeEmbedder
}

// setupTestRuntime writes two posts and three Markdown pages to a temp dir
// and points a memory-backed runtime at them. The long post yields four
// chunks, the short one a single chunk. One page has a malformed header.
func setupTestRuntime(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	posts := []domain.Post{
		{PostID: 1, TopicID: 10, TopicTitle: "Setup", PostNumber: 1, Author: "alice",
			URL: "https://forum.example/t/10/1", Content: "Hello   world"},
		{PostID: 2, TopicID: 10, TopicTitle: "Setup", PostNumber: 2, Author: "bob",
			URL: "https://forum.example/t/10/2", Content: strings.Repeat("a", 2500)},
	}
	data, err := json.Marshal(posts)
	require.NoError(t, err)
	postsFile := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(postsFile, data, 0o600))

	docsDir := filepath.Join(dir, "pages")
	require.NoError(t, os.Mkdir(docsDir, 0o755))
	pages := map[string]string{
		"a.md": "---\ntitle: \"Intro\"\noriginal_url: \"https://docs.example/intro\"\n" +
			"downloaded_at: \"2025-01-01T00:00:00\"\n---\nWelcome to the course.",
		"b.md":      "No header here.",
		"c.md":      "---\ntitle: \"Broken\"\n---\nbody",
		"notes.txt": "ignored",
	}
	for name, content := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, name), []byte(content), 0o600))
	}

	settings := domain.DefaultSettings()
	settings.StorePath = filepath.Join(dir, "kb.db")
	settings.Sources.DiscourseFile = postsFile
	settings.Sources.MarkdownDir = docsDir

	env := &testEnv{
		store:    memory.NewChunkStore(),
		config:   memory.NewConfigStore(),
		embedder: &fakeEmbedder{},
	}
	env.rt = &runtime{
		settings:  settings,
		config:    env.config,
		store:     env.store,
		runs:      env.store,
		posts:     discourse.New(postsFile),
		documents: filesystem.New(docsDir),
		newEmbedder: func(*domain.EmbeddingSettings) (driven.EmbeddingService, error) {
			return env.embedder, nil
		},
	}

	oldOpen := openRuntime
	openRuntime = func(context.Context) (*runtime, error) { return env.rt, nil }
	logger.SetOutput(io.Discard)
	t.Cleanup(func() {
		openRuntime = oldOpen
		logger.SetOutput(os.Stderr)
		ingestPosts, ingestDocs, ingestDryRun = false, false, false
	})
	return env
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

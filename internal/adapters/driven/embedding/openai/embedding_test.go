package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Model:   "test-model",
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewEmbeddingService(Config{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("applies defaults", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, svc.baseURL)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, DefaultTimeout, svc.client.Timeout)
		assert.NoError(t, svc.Close())
	})

	t.Run("honours timeout", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k", Timeout: 5 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, svc.client.Timeout)
	})
}

func TestEmbed_Success(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, "hello world", req["input"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"embedding":[0.123456789012345,-0.5,1e-7],"index":0}]}`)
	})

	vector, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.123456789012345, -0.5, 1e-7}, vector)
}

func TestEmbed_EmptyInputIsSent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "", req.Input)
		_, _ = io.WriteString(w, `{"data":[{"embedding":[1],"index":0}]}`)
	})

	vector, err := svc.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, vector)
}

func TestEmbed_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, "status 500"},
		{"rate limited", http.StatusTooManyRequests, `slow down`, "status 429"},
		{"missing data", http.StatusOK, `{}`, "no embedding"},
		{"empty data", http.StatusOK, `{"data":[]}`, "no embedding"},
		{"missing embedding", http.StatusOK, `{"data":[{"index":0}]}`, "no embedding"},
		{"error object", http.StatusOK, `{"error":{"message":"bad model"}}`, "bad model"},
		{"invalid json", http.StatusOK, `not json`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := svc.Embed(context.Background(), "text")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrEmbeddingService)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEmbed_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestEmbed_LongErrorBodyIsTruncated(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, strings.Repeat("x", 5000))
	})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/models", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"data":[]}`)
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("any 2xx", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("no model listing", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("server error", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		err := svc.Ping(context.Background())
		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("unauthorised", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "invalid key")
		})
		err := svc.Ping(context.Background())
		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
		assert.Contains(t, err.Error(), "401")
	})
}

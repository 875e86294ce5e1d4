// Package ai provides factory functions for creating the embedding service adapter.
package ai

import (
	"context"
	"fmt"
	"time"

	openaiembed "github.com/custodia-labs/kbuild/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// CreateEmbeddingService builds the embedding service described by settings.
// Returns domain.ErrEmbeddingUnavailable if no API key is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.APIKey == "" {
		return nil, fmt.Errorf("%w: set API_KEY in the environment or a .env file",
			domain.ErrEmbeddingUnavailable)
	}

	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// ValidateEmbeddingService checks that svc is reachable before any work is
// started against it.
func ValidateEmbeddingService(ctx context.Context, svc driven.EmbeddingService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

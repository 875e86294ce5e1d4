// Package discourse reads the JSON export of forum discussion posts.
package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.PostSource = (*Connector)(nil)

// Connector reads a single export file holding a JSON array of posts.
type Connector struct {
	path string
}

// New creates a connector for the export at path.
func New(path string) *Connector {
	return &Connector{path: path}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "discourse"
}

// Path returns the export file path.
func (c *Connector) Path() string {
	return c.path
}

// Posts decodes the export. Posts keep their export order.
func (c *Connector) Posts(ctx context.Context) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.path, err)
	}
	defer f.Close()

	var posts []domain.Post
	if err := json.NewDecoder(f).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.path, err)
	}

	return posts, nil
}

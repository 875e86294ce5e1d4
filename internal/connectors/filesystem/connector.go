// Package filesystem reads archived documentation pages from a directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.DocumentSource = (*Connector)(nil)

// DefaultExtension is the file extension of documentation pages.
const DefaultExtension = ".md"

// Connector lists the pages of a single directory. Subdirectories are not
// descended into.
type Connector struct {
	rootPath  string
	extension string
}

// New creates a filesystem connector for rootPath.
func New(rootPath string) *Connector {
	return &Connector{
		rootPath:  rootPath,
		extension: DefaultExtension,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// RootPath returns the directory being read.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Documents reads every page in the directory in file name order.
func (c *Connector) Documents(ctx context.Context) ([]domain.RawDocument, error) {
	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", c.rootPath, err)
	}

	var docs []domain.RawDocument //nolint:prealloc // filtered by extension
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), c.extension) {
			continue
		}

		path := filepath.Join(c.rootPath, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		docs = append(docs, domain.RawDocument{
			URI:     path,
			Content: content,
		})
	}

	return docs, nil
}

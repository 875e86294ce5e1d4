// Package markdown parses archived documentation pages: an optional
// front-matter header carrying provenance, followed by the page body.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Header keys recognised in the front matter.
const (
	KeyTitle        = "title"
	KeyOriginalURL  = "original_url"
	KeyDownloadedAt = "downloaded_at"
)

var (
	// headerBlock matches a header that opens the file and runs to the next
	// line holding only "---".
	headerBlock = regexp.MustCompile(`\A---\r?\n((?s:.*?))\r?\n---(?:\r?\n|\z)`)

	headerFields = map[string]*regexp.Regexp{
		KeyTitle:        fieldPattern(KeyTitle),
		KeyOriginalURL:  fieldPattern(KeyOriginalURL),
		KeyDownloadedAt: fieldPattern(KeyDownloadedAt),
	}
)

func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `:[ \t]*"(.*?)"`)
}

// Normaliser handles Markdown pages with a key: "value" header.
type Normaliser struct {
	strip bool
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithStripMarkdown removes Markdown formatting from the body.
// By default the body is kept verbatim.
func WithStripMarkdown(strip bool) Option {
	return func(n *Normaliser) {
		n.strip = strip
	}
}

// New creates a new Markdown normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise splits the header from the body. Pages without a header get
// empty metadata; a header missing title, original_url or downloaded_at
// fails with domain.ErrMalformedDocument.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	meta, body, found, err := ParseHeader(string(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.URI, err)
	}

	if n.strip {
		body = stripMarkdown(body)
	}

	return &driven.NormaliseResult{
		Metadata:  meta,
		Content:   body,
		HasHeader: found,
	}, nil
}

// ParseHeader extracts the provenance header from content and returns the
// remaining body. found is false when content does not open with a header.
func ParseHeader(content string) (meta domain.DocumentMeta, body string, found bool, err error) {
	loc := headerBlock.FindStringSubmatchIndex(content)
	if loc == nil {
		return domain.DocumentMeta{}, content, false, nil
	}

	header := content[loc[2]:loc[3]]
	body = content[loc[1]:]

	var missing []string
	values := make(map[string]string, len(headerFields))
	for _, key := range []string{KeyTitle, KeyOriginalURL, KeyDownloadedAt} {
		m := headerFields[key].FindStringSubmatch(header)
		if m == nil {
			missing = append(missing, key)
			continue
		}
		values[key] = m[1]
	}
	if len(missing) > 0 {
		return domain.DocumentMeta{}, "", true, fmt.Errorf("%w: header missing %s",
			domain.ErrMalformedDocument, strings.Join(missing, ", "))
	}

	return domain.DocumentMeta{
		Title:        values[KeyTitle],
		OriginalURL:  values[KeyOriginalURL],
		DownloadedAt: values[KeyDownloadedAt],
	}, body, true, nil
}

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	for _, r := range markdownRules {
		content = r.pattern.ReplaceAllString(content, r.replacement)
	}
	content = strings.NewReplacer("**", "", "__", "").Replace(content)
	return strings.TrimSpace(content)
}

type markdownRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var markdownRules = []markdownRule{
	{regexp.MustCompile("(?s)```[^`]*```"), ""},
	{regexp.MustCompile("`[^`]+`"), ""},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`(?m)^>\s*`), ""},
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

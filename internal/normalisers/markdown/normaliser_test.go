package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbuild/internal/core/domain"
)

const fullHeader = "---\n" +
	"title: \"Deployment Guide\"\n" +
	"original_url: \"https://docs.example.com/deploy\"\n" +
	"downloaded_at: \"2025-04-14T10:00:00\"\n" +
	"---\n"

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
	assert.False(t, normaliser.strip)
}

func TestNormalise_Success(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		URI:     "markdown_files/deploy.md",
		Content: []byte(fullHeader + "# Deploying\n\nRun the script."),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.HasHeader)
	assert.Equal(t, domain.DocumentMeta{
		Title:        "Deployment Guide",
		OriginalURL:  "https://docs.example.com/deploy",
		DownloadedAt: "2025-04-14T10:00:00",
	}, result.Metadata)
	assert.Equal(t, "# Deploying\n\nRun the script.", result.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_HeaderOnly(t *testing.T) {
	raw := &domain.RawDocument{
		URI: "markdown_files/x.md",
		Content: []byte("---\n" +
			"title: \"X\"\n" +
			"original_url: \"http://y\"\n" +
			"downloaded_at: \"2024-01-01\"\n" +
			"---\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.True(t, result.HasHeader)
	assert.Equal(t, "X", result.Metadata.Title)
	assert.Equal(t, "http://y", result.Metadata.OriginalURL)
	assert.Equal(t, "2024-01-01", result.Metadata.DownloadedAt)
	assert.Empty(t, result.Content)
}

func TestNormalise_NoHeader(t *testing.T) {
	content := "Just some content.\nSecond line."
	raw := &domain.RawDocument{URI: "plain.md", Content: []byte(content)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.False(t, result.HasHeader)
	assert.Equal(t, domain.DocumentMeta{}, result.Metadata)
	assert.Equal(t, content, result.Content)
}

func TestNormalise_MissingField(t *testing.T) {
	raw := &domain.RawDocument{
		URI: "markdown_files/broken.md",
		Content: []byte("---\n" +
			"title: \"Only a title\"\n" +
			"downloaded_at: \"2024-01-01\"\n" +
			"---\nbody"),
	}

	result, err := New().Normalise(context.Background(), raw)
	assert.Nil(t, result)
	require.ErrorIs(t, err, domain.ErrMalformedDocument)
	assert.Contains(t, err.Error(), "original_url")
	assert.Contains(t, err.Error(), "markdown_files/broken.md")
}

func TestNormalise_StripMarkdown(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "doc.md",
		Content: []byte(fullHeader + "# Title\n\nClick [here](https://example.com) for **more**."),
	}

	result, err := New(WithStripMarkdown(true)).Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nClick here for more.", result.Content)
	assert.Equal(t, "Deployment Guide", result.Metadata.Title)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantFound bool
		wantMeta  domain.DocumentMeta
		wantBody  string
		wantErr   error
	}{
		{
			name:      "full header with body",
			content:   fullHeader + "body text",
			wantFound: true,
			wantMeta: domain.DocumentMeta{
				Title:        "Deployment Guide",
				OriginalURL:  "https://docs.example.com/deploy",
				DownloadedAt: "2025-04-14T10:00:00",
			},
			wantBody: "body text",
		},
		{
			name: "crlf line endings",
			content: "---\r\ntitle: \"A\"\r\noriginal_url: \"u\"\r\n" +
				"downloaded_at: \"d\"\r\n---\r\nbody",
			wantFound: true,
			wantMeta:  domain.DocumentMeta{Title: "A", OriginalURL: "u", DownloadedAt: "d"},
			wantBody:  "body",
		},
		{
			name: "closing fence at end of file",
			content: "---\ntitle: \"A\"\noriginal_url: \"u\"\n" +
				"downloaded_at: \"d\"\n---",
			wantFound: true,
			wantMeta:  domain.DocumentMeta{Title: "A", OriginalURL: "u", DownloadedAt: "d"},
			wantBody:  "",
		},
		{
			name: "extra keys ignored and order free",
			content: "---\nauthor: \"z\"\ndownloaded_at: \"d\"\ntitle: \"A\"\n" +
				"original_url: \"u\"\n---\nrest",
			wantFound: true,
			wantMeta:  domain.DocumentMeta{Title: "A", OriginalURL: "u", DownloadedAt: "d"},
			wantBody:  "rest",
		},
		{
			name: "empty quoted values are present",
			content: "---\ntitle: \"\"\noriginal_url: \"\"\n" +
				"downloaded_at: \"\"\n---\nrest",
			wantFound: true,
			wantMeta:  domain.DocumentMeta{},
			wantBody:  "rest",
		},
		{
			name:      "no header",
			content:   "# Heading\n---\ntitle: \"not a header\"\n---\n",
			wantFound: false,
			wantBody:  "# Heading\n---\ntitle: \"not a header\"\n---\n",
		},
		{
			name:      "unterminated header is body",
			content:   "---\ntitle: \"A\"\nno closing fence",
			wantFound: false,
			wantBody:  "---\ntitle: \"A\"\nno closing fence",
		},
		{
			name:      "unquoted value is missing",
			content:   "---\ntitle: A\noriginal_url: \"u\"\ndownloaded_at: \"d\"\n---\n",
			wantFound: true,
			wantErr:   domain.ErrMalformedDocument,
		},
		{
			name:      "prefixed key does not count",
			content:   "---\nsubtitle: \"A\"\noriginal_url: \"u\"\ndownloaded_at: \"d\"\n---\n",
			wantFound: true,
			wantErr:   domain.ErrMalformedDocument,
		},
		{
			name:      "empty input",
			content:   "",
			wantFound: false,
			wantBody:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta, body, found, err := ParseHeader(tc.content)
			assert.Equal(t, tc.wantFound, found)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMeta, meta)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code removed",
			input:    "Use `code` here",
			expected: "Use  here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

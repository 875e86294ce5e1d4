package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPost_JSONFieldNames tests the forum export field names decode into Post
func TestPost_JSONFieldNames(t *testing.T) {
	data := `{
		"post_id": 101,
		"topic_id": 7,
		"topic_title": "Week 2 questions",
		"post_number": 4,
		"author": "bob",
		"created_at": "2025-02-03T10:00:00.000Z",
		"like_count": 2,
		"url": "https://forum.example/t/7/4",
		"content": "Hello\nworld"
	}`

	var p Post
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, int64(101), p.PostID)
	assert.Equal(t, int64(7), p.TopicID)
	assert.Equal(t, "Week 2 questions", p.TopicTitle)
	assert.Equal(t, 4, p.PostNumber)
	assert.Equal(t, "bob", p.Author)
	assert.Equal(t, "2025-02-03T10:00:00.000Z", p.CreatedAt)
	assert.Equal(t, 2, p.LikeCount)
	assert.Equal(t, "https://forum.example/t/7/4", p.URL)
	assert.Equal(t, "Hello\nworld", p.Content)
}

// TestRawDocument_EmptyContent tests RawDocument with empty content
func TestRawDocument_EmptyContent(t *testing.T) {
	raw := RawDocument{
		URI:     "markdown_files/empty.md",
		Content: []byte{},
	}

	assert.Empty(t, raw.Content)
	assert.Equal(t, "markdown_files/empty.md", raw.URI)
}

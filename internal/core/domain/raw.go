package domain

// Post is a discussion post as produced by the forum export.
// Content is already free of HTML; whitespace is normalised at ingestion.
type Post struct {
	PostID     int64  `json:"post_id"`
	TopicID    int64  `json:"topic_id"`
	TopicTitle string `json:"topic_title"`
	PostNumber int    `json:"post_number"`
	Author     string `json:"author"`
	CreatedAt  string `json:"created_at"`
	LikeCount  int    `json:"like_count"`
	URL        string `json:"url"`
	Content    string `json:"content"`
}

// Meta returns the provenance shared by every chunk of this post.
func (p *Post) Meta() PostMeta {
	return PostMeta{
		PostID:     p.PostID,
		TopicID:    p.TopicID,
		TopicTitle: p.TopicTitle,
		PostNumber: p.PostNumber,
		Author:     p.Author,
		CreatedAt:  p.CreatedAt,
		LikeCount:  p.LikeCount,
		URL:        p.URL,
	}
}

// RawDocument represents the bytes of one archived documentation page.
// It is the filesystem connector's output before header parsing.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// Content is the raw file content, header included.
	Content []byte
}

package domain

// SourceKind identifies where a chunk came from.
// It selects the table a chunk lives in and which provenance fields apply.
type SourceKind string

// Available source kinds.
const (
	// SourceKindPost is a forum discussion post.
	SourceKindPost SourceKind = "discussion_post"

	// SourceKindDocument is an archived documentation page.
	SourceKindDocument SourceKind = "document"
)

// SourceKinds lists every kind in the fixed order the backfill walks them.
func SourceKinds() []SourceKind {
	return []SourceKind{SourceKindPost, SourceKindDocument}
}

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindPost, SourceKindDocument:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k SourceKind) Description() string {
	switch k {
	case SourceKindPost:
		return "Discussion posts"
	case SourceKindDocument:
		return "Documents"
	default:
		return "Unknown"
	}
}

// PostMeta is the provenance of a chunk cut from a discussion post.
type PostMeta struct {
	PostID     int64
	TopicID    int64
	TopicTitle string
	PostNumber int
	Author     string

	// CreatedAt is kept verbatim as exported by the forum.
	CreatedAt string

	LikeCount int
	URL       string
}

// DocumentMeta is the provenance of a chunk cut from a documentation page.
// All fields are empty when the page carried no header.
type DocumentMeta struct {
	Title        string
	OriginalURL  string
	DownloadedAt string
}

// Chunk is the unit of storage and retrieval.
// Exactly one of Post or Document is set, matching Kind.
type Chunk struct {
	// ID is assigned by the store on insert and is stable for the row's lifetime.
	ID int64

	// Kind selects the provenance variant.
	Kind SourceKind

	// Post is set for SourceKindPost chunks.
	Post *PostMeta

	// Document is set for SourceKindDocument chunks.
	Document *DocumentMeta

	// Index is the 0-based position of this chunk within its parent text.
	Index int

	// Content is the whitespace-collapsed text of the chunk.
	Content string

	// Embedding is nil until the backfill attaches a vector.
	Embedding []float64
}

// IsEmbedded reports whether the chunk carries a vector.
func (c *Chunk) IsEmbedded() bool {
	return len(c.Embedding) > 0
}

// PendingChunk is the slice of a chunk the backfill needs: its id and text.
type PendingChunk struct {
	ID      int64
	Content string
}

// ChunkStats summarises one table of the store.
type ChunkStats struct {
	Kind     SourceKind
	Total    int
	Embedded int
}

// Pending returns the number of rows still waiting for an embedding.
func (s ChunkStats) Pending() int {
	return s.Total - s.Embedded
}

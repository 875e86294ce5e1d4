package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/kbuild/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/kbuild/internal/core/domain"
	"github.com/custodia-labs/kbuild/internal/core/ports/driven"
)

// Table names per source kind.
const (
	discourseTable = "discourse_chunks"
	markdownTable  = "markdown_chunks"
)

// Verify interface compliance.
var (
	_ driven.ChunkStore = (*Store)(nil)
	_ driven.RunStore   = (*Store)(nil)
)

// Store is the SQLite-based chunk store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the database file at path, creating it and its parent
// directory if needed. If path is empty, domain.DefaultStorePath is used.
// Tables are created by Initialize.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = domain.DefaultStorePath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrStoreUnavailable, err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStoreUnavailable, err)
	}

	// One handle per run; every write commits through it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStoreUnavailable, err)
	}

	return &Store{
		db:   db,
		path: path,
	}, nil
}

// Initialize ensures the schema exists. Safe to call repeatedly.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes one migration and records its version atomically.
func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}

	return tx.Commit()
}

// ==================== Chunk Store ====================

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// tableFor maps a source kind to its table.
func tableFor(kind domain.SourceKind) (string, error) {
	switch kind {
	case domain.SourceKindPost:
		return discourseTable, nil
	case domain.SourceKindDocument:
		return markdownTable, nil
	default:
		return "", fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}
}

// InsertChunk appends a chunk with a NULL embedding and sets chunk.ID.
func (s *Store) InsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: nil chunk", domain.ErrInvalidInput)
	}
	return insertChunk(ctx, s.db, chunk)
}

// InsertChunks appends the chunks of one parent in a single transaction.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range chunks {
		if err := insertChunk(ctx, tx, &chunks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func insertChunk(ctx context.Context, db execer, chunk *domain.Chunk) error {
	var (
		res sql.Result
		err error
	)

	switch chunk.Kind {
	case domain.SourceKindPost:
		if chunk.Post == nil {
			return fmt.Errorf("%w: post chunk without post metadata", domain.ErrInvalidInput)
		}
		m := chunk.Post
		res, err = db.ExecContext(ctx, `
			INSERT INTO discourse_chunks
				(post_id, topic_id, topic_title, post_number, author, created_at, likes, chunk_index, content, url, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		`, m.PostID, m.TopicID, m.TopicTitle, m.PostNumber, m.Author, m.CreatedAt,
			m.LikeCount, chunk.Index, chunk.Content, m.URL)

	case domain.SourceKindDocument:
		m := chunk.Document
		if m == nil {
			m = &domain.DocumentMeta{}
		}
		res, err = db.ExecContext(ctx, `
			INSERT INTO markdown_chunks
				(doc_title, original_url, downloaded_at, chunk_index, content, embedding)
			VALUES (?, ?, ?, ?, ?, NULL)
		`, m.Title, m.OriginalURL, m.DownloadedAt, chunk.Index, chunk.Content)

	default:
		return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, chunk.Kind)
	}

	if err != nil {
		return fmt.Errorf("%w: inserting chunk: %v", domain.ErrStoreUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading chunk id: %w", err)
	}
	chunk.ID = id
	chunk.Embedding = nil
	return nil
}

// FetchUnembedded returns every pending row of the kind in ascending id order.
func (s *Store) FetchUnembedded(ctx context.Context, kind domain.SourceKind) ([]domain.PendingChunk, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content FROM "+table+" WHERE embedding IS NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying pending chunks: %w", err)
	}
	defer rows.Close()

	var pending []domain.PendingChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.PendingChunk
		if err := rows.Scan(&p.ID, &p.Content); err != nil {
			return nil, fmt.Errorf("scanning pending chunk: %w", err)
		}
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending chunks: %w", err)
	}

	return pending, nil
}

// SetEmbedding stores the vector on one row. The write is committed on return.
func (s *Store) SetEmbedding(ctx context.Context, kind domain.SourceKind, id int64, vector []float64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding for %s row %d", domain.ErrInvalidInput, kind, id)
	}

	blob, err := encodeEmbedding(vector)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET embedding = ? WHERE id = ?", blob, id)
	if err != nil {
		return fmt.Errorf("%w: updating embedding: %v", domain.ErrStoreUnavailable, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s row %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// Stats counts total and embedded rows of the kind.
func (s *Store) Stats(ctx context.Context, kind domain.SourceKind) (domain.ChunkStats, error) {
	stats := domain.ChunkStats{Kind: kind}

	table, err := tableFor(kind)
	if err != nil {
		return stats, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(embedding) FROM "+table)
	if err := row.Scan(&stats.Total, &stats.Embedded); err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}
	return stats, nil
}

// ListChunks returns every row of the kind in ascending id order.
func (s *Store) ListChunks(ctx context.Context, kind domain.SourceKind) ([]domain.Chunk, error) {
	var query string
	switch kind {
	case domain.SourceKindPost:
		query = `
			SELECT id, post_id, topic_id, topic_title, post_number, author, created_at, likes,
				chunk_index, content, url, embedding
			FROM discourse_chunks ORDER BY id`
	case domain.SourceKindDocument:
		query = `
			SELECT id, doc_title, original_url, downloaded_at, chunk_index, content, embedding
			FROM markdown_chunks ORDER BY id`
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows, kind)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// scanChunk scans a chunk row of the given kind.
func scanChunk(rows *sql.Rows, kind domain.SourceKind) (*domain.Chunk, error) {
	chunk := domain.Chunk{Kind: kind}
	var embeddingBlob []byte

	switch kind {
	case domain.SourceKindPost:
		var m domain.PostMeta
		if err := rows.Scan(&chunk.ID, &m.PostID, &m.TopicID, &m.TopicTitle, &m.PostNumber,
			&m.Author, &m.CreatedAt, &m.LikeCount, &chunk.Index, &chunk.Content, &m.URL,
			&embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Post = &m
	default:
		var m domain.DocumentMeta
		if err := rows.Scan(&chunk.ID, &m.Title, &m.OriginalURL, &m.DownloadedAt,
			&chunk.Index, &chunk.Content, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Document = &m
	}

	embedding, err := decodeEmbedding(embeddingBlob)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", chunk.ID, err)
	}
	chunk.Embedding = embedding

	return &chunk, nil
}

// encodeEmbedding renders a vector as a JSON array of numbers.
func encodeEmbedding(vector []float64) ([]byte, error) {
	blob, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding embedding: %v", domain.ErrInvalidInput, err)
	}
	return blob, nil
}

// decodeEmbedding parses a stored vector. A NULL column yields nil.
func decodeEmbedding(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var vector []float64
	if err := json.Unmarshal(blob, &vector); err != nil {
		return nil, fmt.Errorf("decoding embedding: %w", err)
	}
	return vector, nil
}

// ==================== Run Store ====================

// SaveRun stores or updates a backfill run.
func (s *Store) SaveRun(ctx context.Context, report *domain.BackfillReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}

	kindsJSON, err := json.Marshal(report.Kinds)
	if err != nil {
		return fmt.Errorf("marshalling run progress: %w", err)
	}

	var finishedAt *time.Time
	if !report.FinishedAt.IsZero() {
		t := report.FinishedAt.UTC()
		finishedAt = &t
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO backfill_runs (id, started_at, finished_at, kinds, failed_kind, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			kinds = excluded.kinds,
			failed_kind = excluded.failed_kind,
			error = excluded.error
	`, report.RunID, report.StartedAt.UTC(), finishedAt, string(kindsJSON),
		string(report.FailedKind), report.Error)

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run.
func (s *Store) LastRun(ctx context.Context) (*domain.BackfillReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, kinds, failed_kind, error
		FROM backfill_runs ORDER BY started_at DESC, rowid DESC LIMIT 1
	`)

	var (
		report     domain.BackfillReport
		finishedAt sql.NullTime
		kindsJSON  string
		failedKind string
	)
	if err := row.Scan(&report.RunID, &report.StartedAt, &finishedAt, &kindsJSON,
		&failedKind, &report.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if finishedAt.Valid {
		report.FinishedAt = finishedAt.Time
	}
	report.FailedKind = domain.SourceKind(failedKind)

	if kindsJSON != "" {
		if err := json.Unmarshal([]byte(kindsJSON), &report.Kinds); err != nil {
			return nil, fmt.Errorf("unmarshaling run progress: %w", err)
		}
	}

	return &report, nil
}

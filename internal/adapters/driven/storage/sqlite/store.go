package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
	"github.com/docwhisper-labs/docwhisper-cli/internal/fingerprint"
	"github.com/docwhisper-labs/docwhisper-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.docwhisper/data/rag_cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docwhisper", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rag_cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
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
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
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
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
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

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// IsCached reports whether path has been processed and is unchanged.
// The file's content hash is recomputed on every call, so the check
// costs O(file size): a file silently modified without an mtime change
// is still detected. Missing files and unknown paths return false.
func (s *Store) IsCached(ctx context.Context, path string) bool {
	normalized, err := fingerprint.Normalize(path)
	if err != nil {
		logger.Warn("cache check: %v", err)
		return false
	}

	var storedHash string
	err = s.db.QueryRowContext(ctx, `
		SELECT file_hash FROM documents WHERE file_path = ?
	`, normalized).Scan(&storedHash)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		logger.Warn("cache check for %s: %v", normalized, err)
		return false
	}

	currentHash, _, err := fingerprint.File(normalized)
	if err != nil {
		// File gone or unreadable; treat as uncached rather than fail.
		logger.Warn("cache check for %s: %v", normalized, err)
		return false
	}

	return currentHash == storedHash
}

// UpsertDocument replaces the document row for path in one
// transaction: prior embeddings and the prior row are deleted, then a
// fresh row with a new fingerprint, timestamps and chunk list is
// inserted.
func (s *Store) UpsertDocument(ctx context.Context, path string, chunks []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := s.insertDocumentTx(ctx, tx, path, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AppendEmbeddings inserts one embedding row per pair for the current
// document at path, preserving input order.
func (s *Store) AppendEmbeddings(ctx context.Context, path string, pairs []driven.StoredEmbedding) error {
	normalized, err := fingerprint.Normalize(path)
	if err != nil {
		return fmt.Errorf("normalising path: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var docID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM documents WHERE file_path = ?
	`, normalized).Scan(&docID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up document: %w", err)
	}

	if err := insertEmbeddingsTx(ctx, tx, docID, pairs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceDocument performs the document upsert and the embedding
// inserts inside a single transaction. A crash mid-operation leaves
// the prior-good state intact instead of a document row with no
// embeddings.
func (s *Store) ReplaceDocument(ctx context.Context, path string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	docID, err := s.insertDocumentTx(ctx, tx, path, chunks)
	if err != nil {
		return err
	}

	pairs := make([]driven.StoredEmbedding, len(chunks))
	for i := range chunks {
		pairs[i] = driven.StoredEmbedding{Vector: vectors[i], ChunkText: chunks[i]}
	}
	if err := insertEmbeddingsTx(ctx, tx, docID, pairs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// insertDocumentTx deletes any prior row for path and inserts the
// fresh one, returning the new document id. Runs inside the caller's
// transaction.
func (s *Store) insertDocumentTx(ctx context.Context, tx *sql.Tx, path string, chunks []string) (string, error) {
	normalized, err := fingerprint.Normalize(path)
	if err != nil {
		return "", fmt.Errorf("normalising path: %w", err)
	}

	hash, modTime, err := fingerprint.File(normalized)
	if err != nil {
		return "", fmt.Errorf("fingerprinting file: %w", err)
	}

	chunksJSON, err := json.Marshal(chunks)
	if err != nil {
		return "", fmt.Errorf("marshalling chunks: %w", err)
	}

	// Replace wholesale: embeddings first, then the document row.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM embeddings WHERE document_id IN
			(SELECT id FROM documents WHERE file_path = ?)
	`, normalized); err != nil {
		return "", fmt.Errorf("deleting prior embeddings: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE file_path = ?", normalized); err != nil {
		return "", fmt.Errorf("deleting prior document: %w", err)
	}

	docID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, file_path, file_hash, last_modified, processed_date, chunks)
		VALUES (?, ?, ?, ?, ?, ?)
	`, docID, normalized, hash, modTime.UTC(), time.Now().UTC(), string(chunksJSON)); err != nil {
		return "", fmt.Errorf("inserting document: %w", err)
	}

	return docID, nil
}

// insertEmbeddingsTx bulk-inserts embedding rows in input order.
func insertEmbeddingsTx(ctx context.Context, tx *sql.Tx, docID string, pairs []driven.StoredEmbedding) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (document_id, embedding, chunk_text)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		blob := float32SliceToBytes(pair.Vector)
		if _, err := stmt.ExecContext(ctx, docID, blob, pair.ChunkText); err != nil {
			return fmt.Errorf("inserting embedding: %w", err)
		}
	}
	return nil
}

// AllEmbeddings returns every embedding row ordered by row id, which
// is insertion order. The enumeration is total and stable: two calls
// against an unmodified store return identical sequences.
func (s *Store) AllEmbeddings(ctx context.Context) ([]driven.StoredEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT embedding, chunk_text FROM embeddings ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var result []driven.StoredEmbedding //nolint:prealloc // size unknown from query
	for rows.Next() {
		var blob []byte
		var chunkText string
		if err := rows.Scan(&blob, &chunkText); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		result = append(result, driven.StoredEmbedding{
			Vector:    bytesToFloat32Slice(blob),
			ChunkText: chunkText,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return result, nil
}

// Clear removes every document and embedding row in one transaction.
// Invalidates the whole cache, typically after an embedding model
// change made the stored vectors unusable.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves the current document row for a path.
func (s *Store) GetDocument(ctx context.Context, path string) (*domain.Document, error) {
	normalized, err := fingerprint.Normalize(path)
	if err != nil {
		return nil, fmt.Errorf("normalising path: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, file_hash, last_modified, processed_date, chunks
		FROM documents WHERE file_path = ?
	`, normalized)

	return scanDocument(row)
}

// ListDocuments returns all current document rows ordered by path.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, file_hash, last_modified, processed_date, chunks
		FROM documents ORDER BY file_path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var chunksJSON string
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Fingerprint,
			&doc.LastModified, &doc.ProcessedAt, &chunksJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal([]byte(chunksJSON), &doc.Chunks); err != nil {
			return nil, fmt.Errorf("unmarshaling chunks: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DocumentCount returns the number of distinct cached documents.
func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// EmbeddingCount returns the number of persisted chunk vectors.
func (s *Store) EmbeddingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a little-endian byte
// slice for BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var chunksJSON string

	if err := row.Scan(&doc.ID, &doc.Path, &doc.Fingerprint,
		&doc.LastModified, &doc.ProcessedAt, &chunksJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if err := json.Unmarshal([]byte(chunksJSON), &doc.Chunks); err != nil {
		return nil, fmt.Errorf("unmarshaling chunks: %w", err)
	}

	return &doc, nil
}

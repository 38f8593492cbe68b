package driven

import (
	"context"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
)

// StoredEmbedding is one persisted chunk vector as returned by
// DocumentStore.AllEmbeddings, in insertion order.
type StoredEmbedding struct {
	Vector    []float32
	ChunkText string
}

// DocumentStore is the durable cache of processed files, their chunk
// texts and their embeddings. Backed by SQLite.
//
// The store is the only authority on corpus state; the in-memory
// similarity index is derived from it at startup via AllEmbeddings.
type DocumentStore interface {
	// IsCached reports whether path has already been processed and its
	// content is unchanged. The check recomputes the file's content
	// hash, so it costs O(file size). A missing file or unknown path
	// returns false, never an error.
	IsCached(ctx context.Context, path string) bool

	// UpsertDocument replaces any prior document row (and its
	// embeddings) for the normalised path with a fresh row carrying a
	// new fingerprint and the given chunk list, in one transaction.
	UpsertDocument(ctx context.Context, path string, chunks []string) error

	// AppendEmbeddings inserts one embedding row per pair for the
	// current document at path, preserving input order.
	AppendEmbeddings(ctx context.Context, path string, pairs []StoredEmbedding) error

	// ReplaceDocument performs UpsertDocument and AppendEmbeddings in
	// a single transaction, so a crash can never leave a document row
	// without its embedding rows. Vectors[i] embeds chunks[i].
	ReplaceDocument(ctx context.Context, path string, chunks []string, vectors [][]float32) error

	// Clear removes every document and embedding row in a single
	// transaction. Used to invalidate the whole cache when its stored
	// vectors no longer match the embedding model.
	Clear(ctx context.Context) error

	// AllEmbeddings returns every embedding row in insertion order.
	// The enumeration is total and stable: two calls against an
	// unmodified store return identical sequences.
	AllEmbeddings(ctx context.Context) ([]StoredEmbedding, error)

	// GetDocument retrieves the current document row for a path.
	GetDocument(ctx context.Context, path string) (*domain.Document, error)

	// ListDocuments returns all current document rows.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DocumentCount returns the number of distinct cached documents.
	DocumentCount(ctx context.Context) (int, error)

	// EmbeddingCount returns the number of persisted chunk vectors.
	EmbeddingCount(ctx context.Context) (int, error)

	// Close releases the underlying database handle.
	Close() error
}

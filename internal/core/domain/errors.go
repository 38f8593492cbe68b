package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyIndex indicates a query was attempted before any
	// document was ingested. Recoverable: the user should add
	// documents first.
	ErrEmptyIndex = errors.New("no documents in the index")

	// ErrDimensionMismatch indicates an embedding vector length that
	// does not match the index dimension. Usually means the embedding
	// model changed; the index must be rebuilt, not silently degraded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Ingest and query are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the completion service is not
	// configured. Retrieval still works; answer generation does not.
	ErrLLMUnavailable = errors.New("completion service unavailable")
)

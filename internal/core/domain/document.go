package domain

import "time"

// Document is the durable record of one processed source file.
// There is at most one current Document per normalised file path;
// reprocessing a changed file replaces the record wholesale.
type Document struct {
	// ID is the unique identifier for the document row.
	ID string

	// Path is the normalised absolute file path. Together with
	// Fingerprint it identifies one processed revision of the file.
	Path string

	// Fingerprint is the SHA-256 content hash at processing time.
	Fingerprint string

	// LastModified is the file's modification time at processing time.
	LastModified time.Time

	// ProcessedAt is when the document was chunked and embedded.
	ProcessedAt time.Time

	// Chunks holds the document's chunk texts in order. The embedding
	// rows for this document correspond 1:1 and in the same order.
	Chunks []string
}

// Embedding is one persisted chunk vector owned by a Document.
type Embedding struct {
	// ID is the storage-assigned row id; ascending IDs give the
	// total insertion order used for index rebuild.
	ID int64

	// DocumentID links to the owning Document.
	DocumentID string

	// Vector is the fixed-length embedding of ChunkText.
	Vector []float32

	// ChunkText is the chunk this vector was computed from.
	ChunkText string
}

// SourceFile pairs a file path with its extracted plain text,
// ready for chunking and embedding.
type SourceFile struct {
	Path string
	Text string
}

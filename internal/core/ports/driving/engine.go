package driving

import (
	"context"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
)

// EngineService is the retrieval engine as seen by presentation
// layers. All operations are synchronous and blocking; callers wanting
// a responsive surface invoke them off their event loop. Ingest and
// Query are safe to call concurrently against one engine instance.
type EngineService interface {
	// Ingest processes extracted (path, text) pairs: chunk, embed,
	// persist, index. Files are processed independently; per-file
	// failures are collected in the report.
	Ingest(ctx context.Context, files []domain.SourceFile) *domain.IngestReport

	// IngestPaths extracts text from each file first, skipping files
	// whose cached fingerprint is unchanged, then ingests the rest.
	IngestPaths(ctx context.Context, paths []string) *domain.IngestReport

	// Query returns the k chunk texts nearest to the query text,
	// closest first. Fails with domain.ErrEmptyIndex when nothing has
	// been ingested; k is clamped to the number of indexed chunks.
	Query(ctx context.Context, text string, k int) ([]string, error)

	// LoadFromStore rebuilds the in-memory chunk table and similarity
	// index from persisted state. Called once at process start.
	LoadFromStore(ctx context.Context) error

	// ChunkCount returns the number of chunks currently indexed.
	ChunkCount() int

	// DocumentCount returns the number of distinct cached documents.
	DocumentCount(ctx context.Context) (int, error)
}

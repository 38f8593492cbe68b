package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/docwhisper-labs/docwhisper-cli/internal/chunker"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driving"
	"github.com/docwhisper-labs/docwhisper-cli/internal/fingerprint"
	"github.com/docwhisper-labs/docwhisper-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.EngineService = (*Engine)(nil)

// Engine is the retrieval engine: it chunks ingested text, embeds the
// chunks, persists them through the document store and serves
// similarity queries from the in-memory index.
//
// The chunk table and the vector index move in lockstep: row i of the
// index holds the embedding of chunks[i]. One mutex guards the pair so
// a query never observes a length mismatch between them.
type Engine struct {
	store     driven.DocumentStore
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	extractor driven.TextExtractor
	splitter  *chunker.Splitter

	mu     sync.Mutex
	chunks []string
}

// NewEngine creates a retrieval engine over the given collaborators.
func NewEngine(
	store driven.DocumentStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	extractor driven.TextExtractor,
	splitter *chunker.Splitter,
) *Engine {
	return &Engine{
		store:     store,
		index:     index,
		embedder:  embedder,
		extractor: extractor,
		splitter:  splitter,
	}
}

// Ingest processes extracted (path, text) pairs: chunk, embed, persist,
// index. Files are processed independently; a failure on one file is
// recorded in the report and does not undo work already committed for
// earlier files.
func (e *Engine) Ingest(ctx context.Context, files []domain.SourceFile) *domain.IngestReport {
	report := &domain.IngestReport{}

	logger.Section("Ingest")
	logger.Debug("Ingesting %d file(s)", len(files))

	for _, f := range files {
		chunks := e.splitter.Split(f.Text)
		if len(chunks) == 0 {
			logger.Debug("No text in %s, skipping", f.Path)
			report.Skipped++
			continue
		}
		logger.Debug("%s: %d chunk(s)", f.Path, len(chunks))

		vectors, err := e.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			logger.Warn("Embedding failed for %s: %v", f.Path, err)
			report.Failures = append(report.Failures, domain.FileError{
				Path: f.Path,
				Err:  fmt.Errorf("embed chunks: %w", err),
			})
			continue
		}

		if err := e.store.ReplaceDocument(ctx, f.Path, chunks, vectors); err != nil {
			logger.Warn("Persisting %s failed: %v", f.Path, err)
			report.Failures = append(report.Failures, domain.FileError{
				Path: f.Path,
				Err:  fmt.Errorf("persist document: %w", err),
			})
			continue
		}

		if err := e.appendToIndex(chunks, vectors); err != nil {
			// The store committed but the in-memory index did not.
			// LoadFromStore at next start reconciles the two.
			logger.Warn("Indexing %s failed: %v", f.Path, err)
			report.Failures = append(report.Failures, domain.FileError{
				Path: f.Path,
				Err:  fmt.Errorf("index chunks: %w", err),
			})
			continue
		}

		report.Processed++
		report.ChunksAdded += len(chunks)
	}

	logger.Info("Ingest done: %d processed, %d skipped, %d failed",
		report.Processed, report.Skipped, len(report.Failures))

	return report
}

// IngestPaths extracts text from each file, skipping files whose cached
// fingerprint is unchanged, then ingests the extracted text. Extraction
// failures are per-file and recorded in the report.
func (e *Engine) IngestPaths(ctx context.Context, paths []string) *domain.IngestReport {
	report := &domain.IngestReport{}
	var files []domain.SourceFile

	for _, p := range paths {
		path, err := fingerprint.Normalize(p)
		if err != nil {
			report.Failures = append(report.Failures, domain.FileError{Path: p, Err: err})
			continue
		}

		if e.store.IsCached(ctx, path) {
			logger.Debug("Cache hit for %s, skipping", path)
			report.Skipped++
			continue
		}

		text, err := e.extractor.Extract(ctx, path)
		if err != nil {
			report.Failures = append(report.Failures, domain.FileError{
				Path: path,
				Err:  fmt.Errorf("extract text: %w", err),
			})
			continue
		}

		files = append(files, domain.SourceFile{Path: path, Text: text})
	}

	ingested := e.Ingest(ctx, files)
	report.Processed = ingested.Processed
	report.Skipped += ingested.Skipped
	report.ChunksAdded = ingested.ChunksAdded
	report.Failures = append(report.Failures, ingested.Failures...)

	return report
}

// Query returns the k chunk texts nearest to the query text, closest
// first. k is clamped to the number of indexed chunks.
func (e *Engine) Query(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	// Emptiness is checked before embedding so an empty corpus is
	// reported even when the embedding service is down, and no remote
	// call is wasted.
	if e.ChunkCount() == 0 {
		return nil, domain.ErrEmptyIndex
	}

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if k > len(e.chunks) {
		k = len(e.chunks)
	}

	indices, _, err := e.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]string, len(indices))
	for i, row := range indices {
		results[i] = e.chunks[row]
	}

	logger.Debug("Query returned %d chunk(s)", len(results))
	return results, nil
}

// LoadFromStore rebuilds the in-memory chunk table and vector index
// from persisted state. Called once at process start, before the
// engine serves any traffic.
func (e *Engine) LoadFromStore(ctx context.Context) error {
	rows, err := e.store.AllEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}

	if len(rows) == 0 {
		logger.Debug("Store is empty, nothing to load")
		return nil
	}

	chunks := make([]string, len(rows))
	vectors := make([][]float32, len(rows))
	for i, row := range rows {
		chunks[i] = row.ChunkText
		vectors[i] = row.Vector
	}

	if err := e.appendToIndex(chunks, vectors); err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			// The cached vectors came from a different embedding model.
			// Drop them so the next add rebuilds the cache from scratch
			// instead of every command failing at startup.
			logger.Warn("Cached embeddings do not match the current model dimensions, clearing the cache")
			if clearErr := e.store.Clear(ctx); clearErr != nil {
				return fmt.Errorf("clear stale cache: %w", clearErr)
			}
			return nil
		}
		return fmt.Errorf("rebuild index: %w", err)
	}

	logger.Info("Loaded %d chunk(s) from store", len(rows))
	return nil
}

// ChunkCount returns the number of chunks currently indexed.
func (e *Engine) ChunkCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.chunks)
}

// DocumentCount returns the number of distinct cached documents.
func (e *Engine) DocumentCount(ctx context.Context) (int, error) {
	return e.store.DocumentCount(ctx)
}

// appendToIndex extends the index and the chunk table together. The
// table only grows after the index accepted the whole batch, so the
// row correspondence holds even when Insert rejects.
func (e *Engine) appendToIndex(chunks []string, vectors [][]float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.index.Insert(vectors); err != nil {
		return err
	}
	e.chunks = append(e.chunks, chunks...)
	return nil
}

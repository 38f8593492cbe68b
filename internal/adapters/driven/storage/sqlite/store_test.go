package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// writeSourceFile creates a file on disk so fingerprinting has
// something real to hash.
func writeSourceFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func vec(values ...float32) []float32 {
	return values
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "rag_cache.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	require.NoError(t, store.db.Ping())
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must re-run migrations without error.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestIsCached_UnknownPath(t *testing.T) {
	store := setupTestStore(t)
	path := writeSourceFile(t, "a.pdf", "never ingested")

	assert.False(t, store.IsCached(context.Background(), path))
}

func TestIsCached_MissingFile(t *testing.T) {
	store := setupTestStore(t)

	// Must return false without error for files that do not exist.
	assert.False(t, store.IsCached(context.Background(), filepath.Join(t.TempDir(), "gone.pdf")))
}

func TestIsCached_Lifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSourceFile(t, "a.pdf", "original content")

	err := store.ReplaceDocument(ctx, path, []string{"original content"}, [][]float32{vec(1, 0)})
	require.NoError(t, err)

	// Cached after processing.
	assert.True(t, store.IsCached(ctx, path))

	// Stale after any byte changes.
	require.NoError(t, os.WriteFile(path, []byte("modified content"), 0600))
	assert.False(t, store.IsCached(ctx, path))

	// Cached again after reprocessing.
	err = store.ReplaceDocument(ctx, path, []string{"modified content"}, [][]float32{vec(0, 1)})
	require.NoError(t, err)
	assert.True(t, store.IsCached(ctx, path))
}

func TestReplaceDocument_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSourceFile(t, "doc.pdf", "chunk one chunk two")

	chunks := []string{"chunk one", "chunk two"}
	vectors := [][]float32{vec(1, 2, 3), vec(4, 5, 6)}
	require.NoError(t, store.ReplaceDocument(ctx, path, chunks, vectors))

	doc, err := store.GetDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, chunks, doc.Chunks)
	assert.NotEmpty(t, doc.Fingerprint)
	assert.False(t, doc.ProcessedAt.IsZero())

	all, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "chunk one", all[0].ChunkText)
	assert.Equal(t, vec(1, 2, 3), all[0].Vector)
	assert.Equal(t, "chunk two", all[1].ChunkText)
	assert.Equal(t, vec(4, 5, 6), all[1].Vector)
}

func TestReplaceDocument_MismatchedLengths(t *testing.T) {
	store := setupTestStore(t)
	path := writeSourceFile(t, "doc.pdf", "content")

	err := store.ReplaceDocument(context.Background(), path, []string{"a", "b"}, [][]float32{vec(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplaceDocument_ReplacesWholesale(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSourceFile(t, "doc.pdf", "version one")

	require.NoError(t, store.ReplaceDocument(ctx, path,
		[]string{"old a", "old b", "old c"},
		[][]float32{vec(1), vec(2), vec(3)}))

	require.NoError(t, os.WriteFile(path, []byte("version two"), 0600))
	require.NoError(t, store.ReplaceDocument(ctx, path,
		[]string{"new a", "new b"},
		[][]float32{vec(4), vec(5)}))

	// Exactly one current row for the path, holding the new chunks.
	docCount, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, docCount)

	doc, err := store.GetDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"new a", "new b"}, doc.Chunks)

	// Old embeddings must no longer appear.
	all, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new a", all[0].ChunkText)
	assert.Equal(t, "new b", all[1].ChunkText)
}

func TestUpsertThenAppendEmbeddings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSourceFile(t, "doc.pdf", "some text")

	require.NoError(t, store.UpsertDocument(ctx, path, []string{"some text"}))

	pairs := []driven.StoredEmbedding{{Vector: vec(7, 8), ChunkText: "some text"}}
	require.NoError(t, store.AppendEmbeddings(ctx, path, pairs))

	all, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, vec(7, 8), all[0].Vector)
}

func TestAppendEmbeddings_UnknownPath(t *testing.T) {
	store := setupTestStore(t)
	path := writeSourceFile(t, "doc.pdf", "text")

	err := store.AppendEmbeddings(context.Background(), path,
		[]driven.StoredEmbedding{{Vector: vec(1), ChunkText: "text"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllEmbeddings_OrderStable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pathA := writeSourceFile(t, "a.pdf", "file a")
	pathB := writeSourceFile(t, "b.pdf", "file b")

	require.NoError(t, store.ReplaceDocument(ctx, pathA,
		[]string{"a1", "a2", "a3"},
		[][]float32{vec(1), vec(2), vec(3)}))
	require.NoError(t, store.ReplaceDocument(ctx, pathB,
		[]string{"b1", "b2"},
		[][]float32{vec(4), vec(5)}))

	first, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)
	second, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)

	// Total, order-stable enumeration: identical across calls, and
	// insertion order preserved (A's three chunks then B's two).
	assert.Equal(t, first, second)
	require.Len(t, first, 5)
	texts := make([]string, len(first))
	for i, e := range first {
		texts[i] = e.ChunkText
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, texts)
}

func TestClear(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSourceFile(t, "doc.pdf", "some text")

	require.NoError(t, store.ReplaceDocument(ctx, path,
		[]string{"c1", "c2"},
		[][]float32{vec(1), vec(2)}))

	require.NoError(t, store.Clear(ctx))

	docCount, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, docCount)

	all, err := store.AllEmbeddings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// The file must be treated as new again.
	assert.False(t, store.IsCached(ctx, path))
}

func TestGetDocument_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetDocument(context.Background(), "/no/such/file.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pathA := writeSourceFile(t, "a.pdf", "file a")
	pathB := writeSourceFile(t, "b.pdf", "file b")
	require.NoError(t, store.ReplaceDocument(ctx, pathA, []string{"a"}, [][]float32{vec(1)}))
	require.NoError(t, store.ReplaceDocument(ctx, pathB, []string{"b"}, [][]float32{vec(2)}))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	docCount, err := store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, docCount)

	path := writeSourceFile(t, "doc.pdf", "text")
	require.NoError(t, store.ReplaceDocument(ctx, path,
		[]string{"c1", "c2", "c3"},
		[][]float32{vec(1), vec(2), vec(3)}))

	docCount, err = store.DocumentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, docCount)

	embCount, err := store.EmbeddingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, embCount)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	original := vec(0.1, -2.5, 3.75, 0)
	assert.Equal(t, original, bytesToFloat32Slice(float32SliceToBytes(original)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

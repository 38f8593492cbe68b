package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
)

func TestDocumentsCmd_ListsDocuments(t *testing.T) {
	_, _, store, cleanup := setupTestServices()
	defer cleanup()
	store.docs = []domain.Document{
		{Path: "/docs/a.pdf", Chunks: []string{"x", "y"}, ProcessedAt: time.Now()},
		{Path: "/docs/b.pdf", Chunks: []string{"z"}, ProcessedAt: time.Now()},
	}

	out, err := execute("documents")
	require.NoError(t, err)

	assert.Contains(t, out, "/docs/a.pdf")
	assert.Contains(t, out, "2 chunk(s)")
	assert.Contains(t, out, "/docs/b.pdf")
	assert.Contains(t, out, "2 document(s) total")
}

func TestDocumentsCmd_Empty(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("documents")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents cached")
}

func TestDocumentsCountCmd(t *testing.T) {
	engine, _, _, cleanup := setupTestServices()
	defer cleanup()
	engine.docCount = 4
	engine.chunkCount = 17

	out, err := execute("documents", "count")
	require.NoError(t, err)
	assert.Contains(t, out, "4 document(s)")
	assert.Contains(t, out, "17 indexed chunk(s)")
}

func TestDocumentsCmd_StoreNotConfigured(t *testing.T) {
	old := documentStore
	documentStore = nil
	defer func() { documentStore = old }()

	_, err := execute("documents")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

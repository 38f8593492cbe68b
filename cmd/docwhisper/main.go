// Command docwhisper is a local RAG assistant for PDF corpora: it
// indexes PDF text into a SQLite-backed cache and answers questions
// grounded in the most relevant chunks via a local Ollama model.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/config/file"
	embedollama "github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/embedding/ollama"
	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/extract/pdf"
	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/llm/lmstudio"
	llmollama "github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/llm/ollama"
	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driven/vector/flat"
	"github.com/docwhisper-labs/docwhisper-cli/internal/adapters/driving/cli"
	"github.com/docwhisper-labs/docwhisper-cli/internal/chunker"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/services"
)

// version is stamped at build time via -ldflags.
var version = "dev"

const pingTimeout = 3 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("data_dir"))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer store.Close()

	embedder := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL:    cfg.GetString("ollama.base_url"),
		Model:      cfg.GetString("embedding.model"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	})
	defer embedder.Close()

	llm := newCompletionService(cfg)
	defer llm.Close()

	index, err := flat.New(embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	splitter := chunker.New(chunker.WithChunkSize(cfg.GetInt("chunk_size")))
	extractor := pdf.New()

	engine := services.NewEngine(store, index, embedder, extractor, splitter)

	ctx := context.Background()
	if err := engine.LoadFromStore(ctx); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	answerer := services.NewAnswerer(engine, llm, prompts, driven.GenerateOptions{
		MaxTokens: cfg.GetInt("llm.max_tokens"),
	})

	// Connectivity is checked up front so commands fail with a clear
	// message instead of timing out mid-operation.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := embedder.Ping(pingCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: embedding service unreachable (%v); add and ask will fail until it is running\n", err)
	}
	if err := llm.Ping(pingCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: completion service unreachable (%v); ask will fail until it is running\n", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Engine: engine,
		Answer: answerer,
		Store:  store,
	})

	return cli.Execute()
}

// newCompletionService picks the completion backend from config.
// Ollama is the default; "lmstudio" selects any OpenAI-compatible
// local server.
func newCompletionService(cfg driven.ConfigStore) driven.CompletionService {
	if cfg.GetString("llm.provider") == "lmstudio" {
		return lmstudio.NewCompletionService(lmstudio.Config{
			BaseURL: cfg.GetString("lmstudio.base_url"),
			APIKey:  cfg.GetString("lmstudio.api_key"),
			Model:   cfg.GetString("llm.model"),
		})
	}

	return llmollama.NewCompletionService(llmollama.Config{
		BaseURL: cfg.GetString("ollama.base_url"),
		Model:   cfg.GetString("llm.model"),
	})
}

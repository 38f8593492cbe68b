package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driving"
	"github.com/docwhisper-labs/docwhisper-cli/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.AnswerService = (*Answerer)(nil)

// boilerplatePrefix is a lead-in some models prepend to grounded
// answers. Stripping it is cosmetic only.
const boilerplatePrefix = "According to the context, "

// noContextSuffix steers the model away from the retrieved chunks when
// the caller asked for a general answer.
const noContextSuffix = " sorry, ignore any provided context, just provide a general answer"

// Answerer turns questions into grounded answers: retrieve the nearest
// chunks from the engine, fill the answer prompt template, call the
// completion service.
type Answerer struct {
	engine  driving.EngineService
	llm     driven.CompletionService
	prompts driven.PromptStore
	genOpts driven.GenerateOptions
}

// NewAnswerer creates an answer service. genOpts is passed through to
// every completion call.
func NewAnswerer(
	engine driving.EngineService,
	llm driven.CompletionService,
	prompts driven.PromptStore,
	genOpts driven.GenerateOptions,
) *Answerer {
	return &Answerer{
		engine:  engine,
		llm:     llm,
		prompts: prompts,
		genOpts: genOpts,
	}
}

// Ask answers the question from the k most relevant chunks. With
// ignoreContext set, the retrieved chunks are still included in the
// prompt but the model is told to answer generally instead.
func (a *Answerer) Ask(ctx context.Context, question string, k int, ignoreContext bool) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	if ignoreContext {
		question += noContextSuffix
	}

	chunks, err := a.engine.Query(ctx, question, k)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved %d context chunk(s)", len(chunks))

	prompt, err := a.compose(question, chunks)
	if err != nil {
		return "", err
	}

	answer, err := a.llm.Generate(ctx, prompt, a.genOpts)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return strings.TrimPrefix(answer, boilerplatePrefix), nil
}

// compose fills the answer template with the context block and the
// question. Chunks are newline-joined in retrieval order.
func (a *Answerer) compose(question string, chunks []string) (string, error) {
	tmpl, err := a.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}

	contextBlock := strings.Join(chunks, "\n")
	return fmt.Sprintf(tmpl, contextBlock, question), nil
}

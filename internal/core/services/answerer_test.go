package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
)

// fakeEngine serves canned retrieval results.
type fakeEngine struct {
	chunks    []string
	err       error
	lastQuery string
	lastK     int
}

func (e *fakeEngine) Ingest(_ context.Context, _ []domain.SourceFile) *domain.IngestReport {
	return &domain.IngestReport{}
}

func (e *fakeEngine) IngestPaths(_ context.Context, _ []string) *domain.IngestReport {
	return &domain.IngestReport{}
}

func (e *fakeEngine) Query(_ context.Context, text string, k int) ([]string, error) {
	e.lastQuery = text
	e.lastK = k
	if e.err != nil {
		return nil, e.err
	}
	return e.chunks, nil
}

func (e *fakeEngine) LoadFromStore(_ context.Context) error { return nil }

func (e *fakeEngine) ChunkCount() int { return len(e.chunks) }

func (e *fakeEngine) DocumentCount(_ context.Context) (int, error) { return 0, nil }

// fakeLLM echoes a canned response and records the prompt it saw.
type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (l *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	l.lastPrompt = prompt
	l.lastOpts = opts
	if l.err != nil {
		return "", l.err
	}
	return l.response, nil
}

func (l *fakeLLM) ModelName() string            { return "fake" }
func (l *fakeLLM) Ping(_ context.Context) error { return nil }
func (l *fakeLLM) Close() error                 { return nil }

// fakePrompts serves the template without touching disk.
type fakePrompts struct {
	tmpl string
	err  error
}

func (p *fakePrompts) Load(_ string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.tmpl, nil
}

const testTemplate = "Context: %s\n\nQuestion: %s\n\nBased on the context provided, please answer the question:"

func TestAsk(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"first chunk", "second chunk"}}
	llm := &fakeLLM{response: "a grounded answer"}
	a := NewAnswerer(engine, llm, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{MaxTokens: 200})

	answer, err := a.Ask(context.Background(), "what is this?", 2, false)
	require.NoError(t, err)
	assert.Equal(t, "a grounded answer", answer)

	assert.Equal(t, "what is this?", engine.lastQuery)
	assert.Equal(t, 2, engine.lastK)
	assert.Equal(t, 200, llm.lastOpts.MaxTokens)

	// Chunks are newline-joined in retrieval order, then the question.
	assert.Equal(t,
		"Context: first chunk\nsecond chunk\n\nQuestion: what is this?\n\nBased on the context provided, please answer the question:",
		llm.lastPrompt)
}

func TestAsk_StripsBoilerplatePrefix(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"ctx"}}
	llm := &fakeLLM{response: "According to the context, the sky is blue."}
	a := NewAnswerer(engine, llm, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{})

	answer, err := a.Ask(context.Background(), "colour of the sky?", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "the sky is blue.", answer)
}

func TestAsk_IgnoreContext(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"ctx"}}
	llm := &fakeLLM{response: "a general answer"}
	a := NewAnswerer(engine, llm, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{})

	answer, err := a.Ask(context.Background(), "what is go?", 1, true)
	require.NoError(t, err)
	assert.Equal(t, "a general answer", answer)

	// The steering suffix travels with the question into retrieval and
	// into the prompt.
	assert.Contains(t, engine.lastQuery, "ignore any provided context")
	assert.Contains(t, llm.lastPrompt, "ignore any provided context")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	a := NewAnswerer(&fakeEngine{}, &fakeLLM{}, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{})

	_, err := a.Ask(context.Background(), "   ", 3, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAsk_EmptyIndex(t *testing.T) {
	engine := &fakeEngine{err: domain.ErrEmptyIndex}
	a := NewAnswerer(engine, &fakeLLM{}, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{})

	_, err := a.Ask(context.Background(), "anything?", 3, false)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestAsk_GenerateError(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"ctx"}}
	llm := &fakeLLM{err: errors.New("model offline")}
	a := NewAnswerer(engine, llm, &fakePrompts{tmpl: testTemplate}, driven.GenerateOptions{})

	_, err := a.Ask(context.Background(), "anything?", 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestAsk_PromptLoadError(t *testing.T) {
	engine := &fakeEngine{chunks: []string{"ctx"}}
	a := NewAnswerer(engine, &fakeLLM{}, &fakePrompts{err: errors.New("no such prompt")}, driven.GenerateOptions{})

	_, err := a.Ask(context.Background(), "anything?", 1, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load answer prompt")
}

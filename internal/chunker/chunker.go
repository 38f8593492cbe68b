// Package chunker splits document text into bounded-size chunks, the
// unit of embedding and retrieval.
package chunker

import "strings"

// DefaultChunkSize is the default chunk budget in characters.
const DefaultChunkSize = 512

// Splitter accumulates whitespace-delimited words into chunks of
// roughly chunkSize characters, with no overlap. Splitting is
// deterministic: the same input always yields the same chunks.
type Splitter struct {
	chunkSize int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkSize returns the configured chunk budget.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Split breaks text into chunks. Words are accumulated until the
// running character count (each word plus one separator) reaches the
// chunk size, then the chunk is flushed. The final partial chunk, if
// non-empty, is kept. Empty or whitespace-only text yields nil,
// which callers treat as "nothing to index".
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	current := make([]string, 0, 64)
	length := 0

	for _, word := range words {
		current = append(current, word)
		length += len(word) + 1

		if length >= s.chunkSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

package driven

import "context"

// TextExtractor converts a source file into plain text. An empty
// result means "nothing to ingest", not an error; extraction errors
// mean the file itself could not be read or parsed.
type TextExtractor interface {
	// Extract returns the plain text content of the file at path.
	Extract(ctx context.Context, path string) (string, error)

	// SupportedExtensions returns the file extensions this extractor
	// handles, lowercased with leading dot (e.g. ".pdf").
	SupportedExtensions() []string
}

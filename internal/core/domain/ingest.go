package domain

// FileError records a per-file ingest failure. One file failing must
// not abort the rest of the batch, so failures are collected rather
// than returned as a single error.
type FileError struct {
	// Path is the file that failed.
	Path string

	// Err is the underlying failure.
	Err error
}

// IngestReport summarises one ingest batch.
type IngestReport struct {
	// Processed counts files that were chunked, embedded and stored.
	Processed int

	// Skipped counts files left alone: already cached with an
	// unchanged fingerprint, or extracted to blank text.
	Skipped int

	// ChunksAdded counts chunks appended to the similarity index.
	ChunksAdded int

	// Failures holds per-file errors, in batch order.
	Failures []FileError
}

// Failed reports whether any file in the batch failed.
func (r *IngestReport) Failed() bool {
	return len(r.Failures) > 0
}

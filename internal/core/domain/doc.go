// Package domain contains the core entities of DocWhisper: cached
// documents, their chunk embeddings, and ingest reporting. It has no
// dependencies on adapters or external services.
package domain

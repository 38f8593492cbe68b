// Package fingerprint computes content fingerprints and canonical
// paths for cached files. Two files are "the same document" when their
// normalised paths match; a document is "unchanged" when its content
// hash matches the stored one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File returns the hex-encoded SHA-256 of the file's content and its
// modification time. Content is streamed in bounded blocks, so large
// documents do not load into memory.
func File(path string) (hash string, modTime time.Time, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("stat file: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", time.Time{}, fmt.Errorf("hashing file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), info.ModTime(), nil
}

// Normalize resolves path to its absolute, cleaned form. Equality of
// normalised paths is the cache identity, independent of trailing
// slashes, relative segments, or surrounding whitespace.
func Normalize(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// Package file provides file-based configuration and prompt storage
// under the DocWhisper config directory.
package file

// Package server persists relayed file payloads and announces them to the
// uploader's room.
package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// errUnsafeFilename rejects names that would escape the upload directory.
var errUnsafeFilename = errors.New("unsafe filename")

// FileRelay decodes uploaded payloads and writes them under a configured
// storage directory. Client-supplied names are reduced to their base name so
// an upload can never escape the directory; colliding names still overwrite
// each other.
type FileRelay struct {
	dir string
}

// NewFileRelay creates the storage directory if needed and returns a relay
// writing into it.
func NewFileRelay(dir string) (*FileRelay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FileRelay{dir: dir}, nil
}

// Store decodes the base64 payload and writes it under the relay's
// directory. It returns the sanitized filename the payload was stored as.
func (f *FileRelay) Store(filename, data string) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}

	if err := os.WriteFile(filepath.Join(f.dir, name), payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	uploadsTotal.Inc()
	return name, nil
}

// sanitizeFilename strips any path components from a client-supplied name.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", errUnsafeFilename
	}
	return name, nil
}

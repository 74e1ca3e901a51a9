package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// FileSource reads the configuration document from a local file.
type FileSource struct {
	path    string
	maxSize int64
	logger  *slog.Logger
}

// NewFileSource creates a file-backed source. A document larger than
// maxSize is an error, never a truncation; maxSize <= 0 disables the
// bound.
func NewFileSource(path string, maxSize int64, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:    path,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Load reads the whole document.
func (s *FileSource) Load(ctx context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to stat configuration %q: %w", s.path, err)
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return "", fmt.Errorf("configuration %q is %d bytes, the limit is %d", s.path, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read configuration %q: %w", s.path, err)
	}

	s.logger.Debug("loaded configuration document",
		"path", s.path,
		"bytes", len(data),
	)

	return string(data), nil
}

// Describe identifies the file for logs and audit records.
func (s *FileSource) Describe() string {
	return "file:" + s.path
}

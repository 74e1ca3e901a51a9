package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shengxinking/tempesta/pkg/config"
)

// Source supplies the configuration document.
type Source interface {
	// Load returns the current document text. It is called once per
	// apply, so implementations may hit the filesystem or network.
	Load(ctx context.Context) (string, error)

	// Describe identifies the source for logs and audit records.
	Describe() string
}

// New builds the Source selected by the bootstrap configuration.
func New(cfg *config.SourceConfig, logger *slog.Logger) (Source, error) {
	switch cfg.Type {
	case config.SourceTypeFile:
		return NewFileSource(cfg.Path, cfg.MaxSize, logger), nil
	case config.SourceTypeGit:
		return NewGitSource(&cfg.Git, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/shengxinking/tempesta/pkg/config"
)

// GitSource reads the configuration document from a git repository.
// The repository is cloned into a local directory on first load and
// reused afterwards; with PullOnLoad set, every subsequent load pulls
// the branch first so operators roll out configuration by pushing.
type GitSource struct {
	cfg    config.GitConfig
	logger *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitSource creates a git-backed source. Nothing touches the
// network until the first Load.
func NewGitSource(cfg *config.GitConfig, logger *slog.Logger) *GitSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitSource{
		cfg:    *cfg,
		logger: logger,
	}
}

// Load clones or opens the repository, optionally pulls, and reads the
// configured document path from the working tree.
func (s *GitSource) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned, err := s.ensureRepo(ctx)
	if err != nil {
		return "", err
	}

	if s.cfg.PullOnLoad && !cloned {
		if err := s.pull(ctx); err != nil {
			return "", err
		}
	}

	docPath := filepath.Join(s.cfg.Dir, s.cfg.Path)
	data, err := os.ReadFile(docPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %q from clone: %w", s.cfg.Path, err)
	}

	s.logger.Debug("loaded configuration document",
		"path", docPath,
		"bytes", len(data),
		"commit", s.headLocked(),
	)

	return string(data), nil
}

// ensureRepo opens the existing clone or creates a fresh one. It
// reports whether a clone just happened, in which case the working
// tree is already current and a pull would be redundant.
func (s *GitSource) ensureRepo(ctx context.Context) (cloned bool, err error) {
	if s.repo != nil {
		return false, nil
	}

	if _, statErr := os.Stat(filepath.Join(s.cfg.Dir, ".git")); statErr == nil {
		repo, err := gogit.PlainOpen(s.cfg.Dir)
		if err != nil {
			return false, fmt.Errorf("failed to open repository %q: %w", s.cfg.Dir, err)
		}
		s.repo = repo
		return false, nil
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create clone directory: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:           s.cfg.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  s.cfg.Depth > 0,
		Depth:         s.cfg.Depth,
	}

	repo, err := gogit.PlainCloneContext(ctx, s.cfg.Dir, false, opts)
	if err != nil {
		return false, fmt.Errorf("failed to clone %q: %w", s.cfg.URL, err)
	}

	s.logger.Info("cloned configuration repository",
		"url", s.cfg.URL,
		"branch", s.cfg.Branch,
		"dir", s.cfg.Dir,
	)

	s.repo = repo
	return true, nil
}

func (s *GitSource) pull(ctx context.Context) error {
	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to pull %q: %w", s.cfg.URL, err)
	}

	return nil
}

// headLocked returns the short HEAD commit hash, or "" when the
// repository is not open yet. The caller must hold s.mu.
func (s *GitSource) headLocked() string {
	if s.repo == nil {
		return ""
	}
	ref, err := s.repo.Head()
	if err != nil {
		return ""
	}
	sha := ref.Hash().String()
	if len(sha) > 12 {
		sha = sha[:12]
	}
	return sha
}

// Describe identifies the repository, branch, document path and, once
// the clone is open, the HEAD commit.
func (s *GitSource) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc := fmt.Sprintf("git:%s#%s/%s", s.cfg.URL, s.cfg.Branch, s.cfg.Path)
	if sha := s.headLocked(); sha != "" {
		desc += "@" + sha
	}
	return desc
}

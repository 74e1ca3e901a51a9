package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shengxinking/tempesta/pkg/config"
)

// seedRepo creates a local repository holding one configuration
// document, for cloning over the filesystem transport.
func seedRepo(t *testing.T, doc string) (dir string, commit func(doc string)) {
	t.Helper()

	dir = t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	commit = func(doc string) {
		t.Helper()

		path := filepath.Join(dir, "tempesta.conf")
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write document: %v", err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			t.Fatalf("failed to get worktree: %v", err)
		}
		if _, err := worktree.Add("tempesta.conf"); err != nil {
			t.Fatalf("failed to add document: %v", err)
		}
		_, err = worktree.Commit("update configuration", &gogit.CommitOptions{
			Author: &object.Signature{
				Name:  "Test User",
				Email: "test@example.com",
				When:  time.Now(),
			},
		})
		if err != nil {
			t.Fatalf("failed to commit: %v", err)
		}
	}

	commit(doc)
	return dir, commit
}

// go-git's PlainInit creates "master" as the initial branch.
func gitConfigFor(url, dir string) *config.GitConfig {
	return &config.GitConfig{
		URL:    url,
		Branch: "master",
		Path:   "tempesta.conf",
		Dir:    dir,
	}
}

func TestGitSource_CloneAndLoad(t *testing.T) {
	seed, _ := seedRepo(t, "listen 8080;\n")

	src := NewGitSource(gitConfigFor(seed, t.TempDir()), nil)

	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != "listen 8080;\n" {
		t.Errorf("got %q, want %q", got, "listen 8080;\n")
	}
}

func TestGitSource_PullOnLoadPicksUpNewCommits(t *testing.T) {
	seed, commit := seedRepo(t, "listen 8080;\n")

	cfg := gitConfigFor(seed, t.TempDir())
	cfg.PullOnLoad = true
	src := NewGitSource(cfg, nil)

	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load() error: %v", err)
	}
	if got != "listen 8080;\n" {
		t.Fatalf("got %q, want %q", got, "listen 8080;\n")
	}

	commit("listen 9090;\n")

	got, err = src.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if got != "listen 9090;\n" {
		t.Errorf("after push got %q, want %q", got, "listen 9090;\n")
	}
}

func TestGitSource_WithoutPullStaysOnClone(t *testing.T) {
	seed, commit := seedRepo(t, "listen 8080;\n")

	cfg := gitConfigFor(seed, t.TempDir())
	src := NewGitSource(cfg, nil)

	if _, err := src.Load(context.Background()); err != nil {
		t.Fatalf("first Load() error: %v", err)
	}

	commit("listen 9090;\n")

	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if got != "listen 8080;\n" {
		t.Errorf("expected stale clone content, got %q", got)
	}
}

func TestGitSource_OpensExistingClone(t *testing.T) {
	seed, _ := seedRepo(t, "listen 8080;\n")
	cloneDir := t.TempDir()

	first := NewGitSource(gitConfigFor(seed, cloneDir), nil)
	if _, err := first.Load(context.Background()); err != nil {
		t.Fatalf("first source Load() error: %v", err)
	}

	// A fresh source over the same directory must open, not re-clone.
	second := NewGitSource(gitConfigFor(seed, cloneDir), nil)
	got, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("second source Load() error: %v", err)
	}
	if got != "listen 8080;\n" {
		t.Errorf("got %q, want %q", got, "listen 8080;\n")
	}
}

func TestGitSource_MissingDocument(t *testing.T) {
	seed, _ := seedRepo(t, "listen 8080;\n")

	cfg := gitConfigFor(seed, t.TempDir())
	cfg.Path = "missing.conf"
	src := NewGitSource(cfg, nil)

	_, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing document")
	}
	if !strings.Contains(err.Error(), "missing.conf") {
		t.Errorf("expected error to name the document, got: %v", err)
	}
}

func TestGitSource_CloneFailure(t *testing.T) {
	cfg := gitConfigFor("/nonexistent/repo.git", t.TempDir())
	src := NewGitSource(cfg, nil)

	_, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable repository")
	}
	if !strings.Contains(err.Error(), "failed to clone") {
		t.Errorf("expected clone error, got: %v", err)
	}
}

func TestGitSource_Describe(t *testing.T) {
	seed, _ := seedRepo(t, "listen 8080;\n")
	src := NewGitSource(gitConfigFor(seed, t.TempDir()), nil)

	desc := src.Describe()
	if !strings.HasPrefix(desc, "git:") {
		t.Errorf("expected git: prefix, got %q", desc)
	}
	if !strings.Contains(desc, "#master/tempesta.conf") {
		t.Errorf("expected branch and path, got %q", desc)
	}
	if strings.Contains(desc, "@") {
		t.Errorf("expected no commit before first load, got %q", desc)
	}

	if _, err := src.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	desc = src.Describe()
	if !strings.Contains(desc, "@") {
		t.Errorf("expected commit suffix after load, got %q", desc)
	}
}

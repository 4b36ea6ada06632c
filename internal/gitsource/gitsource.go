// Package gitsource clones a remote models repository into a temporary
// workspace so it can be used as the build's source tree.
package gitsource

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
	"git.home.luguber.info/inful/ctosite/internal/logfields"
)

// Fetcher manages a temporary clone workspace.
type Fetcher struct {
	workDir string
}

// NewFetcher creates a fresh temporary workspace directory.
func NewFetcher() (*Fetcher, error) {
	dir, err := os.MkdirTemp("", "ctosite-src-")
	if err != nil {
		return nil, fmt.Errorf("create clone workspace: %w", err)
	}
	return &Fetcher{workDir: dir}, nil
}

// Clone fetches the repository at url into the workspace and returns the
// checkout path. Clones are shallow and single-branch; the batch never needs
// history.
func (f *Fetcher) Clone(url, branch string) (string, error) {
	slog.Debug("Cloning models repository", slog.String("url", url), slog.String("branch", branch))
	opts := &git.CloneOptions{URL: url}
	if strings.Contains(url, "://") || strings.Contains(url, "@") {
		// Remote clones are shallow; local paths keep a full clone, which
		// some transports require.
		opts.Depth = 1
	}
	if branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		opts.SingleBranch = true
	}
	repo, err := git.PlainClone(f.workDir, false, opts)
	if err != nil {
		return "", berrors.WrapError(err, berrors.CategoryGit, "clone models repository").WithContext("url", url)
	}
	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Models repository cloned", slog.String("url", url), slog.String("commit", ref.Hash().String()[:8]), logfields.Path(f.workDir))
	} else {
		slog.Info("Models repository cloned", slog.String("url", url), logfields.Path(f.workDir))
	}
	return f.workDir, nil
}

// Cleanup removes the workspace directory.
func (f *Fetcher) Cleanup() error {
	return os.RemoveAll(f.workDir)
}

package gitsource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
)

// initLocalRepo creates a git repository with one committed model file and
// returns its path.
func initLocalRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "person.cto")
	require.NoError(t, os.WriteFile(path, []byte("namespace org.acme@1.0.0\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("person.cto")
	require.NoError(t, err)
	_, err = wt.Commit("add person model", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.org", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestCloneLocalRepository(t *testing.T) {
	src := initLocalRepo(t)

	f, err := NewFetcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Cleanup() })

	path, err := f.Clone(src, "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(path, "person.cto"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "namespace org.acme@1.0.0")
}

func TestCloneFailureCategorized(t *testing.T) {
	f, err := NewFetcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Cleanup() })

	_, err = f.Clone(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.True(t, berrors.IsCategory(err, berrors.CategoryGit))
}

func TestCleanupRemovesWorkspace(t *testing.T) {
	f, err := NewFetcher()
	require.NoError(t, err)
	path := f.workDir
	require.NoError(t, f.Cleanup())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

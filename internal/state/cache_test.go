package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	hash := HashContent([]byte("namespace org.acme@1.0.0"))
	_, ok, err := c.Lookup(ctx, "org/acme/person.cto", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	e := Entry{Path: "org/acme/person.cto", Hash: hash, Namespace: "org.acme@1.0.0", Version: "1.0.0", Page: "org/acme/person.html"}
	require.NoError(t, c.Store(ctx, e))

	got, ok, err := c.Lookup(ctx, e.Path, hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestCacheMissOnChangedContent(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, Entry{Path: "m.cto", Hash: HashContent([]byte("v1")), Namespace: "m", Version: "0.1.0", Page: "m.html"}))
	_, ok, err := c.Lookup(ctx, "m.cto", HashContent([]byte("v2")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenFailureCategorized(t *testing.T) {
	// SQLite cannot create a database file in a missing directory.
	_, err := Open(filepath.Join(t.TempDir(), "missing", "cache.db"))
	require.Error(t, err)
	assert.True(t, berrors.IsCategory(err, berrors.CategoryCache))
}

func TestCacheStoreUpserts(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, Entry{Path: "m.cto", Hash: "h1", Namespace: "m", Version: "1.0.0", Page: "m.html"}))
	require.NoError(t, c.Store(ctx, Entry{Path: "m.cto", Hash: "h2", Namespace: "m", Version: "2.0.0", Page: "m.html"}))

	got, ok, err := c.Lookup(ctx, "m.cto", "h2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", got.Version)
}

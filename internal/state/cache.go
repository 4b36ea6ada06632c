// Package state persists the build cache between runs: the content hash and
// published metadata of every successfully processed source file. Unchanged
// files can then skip compilation while still appearing in the site index.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	_ "modernc.org/sqlite"

	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
)

// Entry is the cached record for one source file.
type Entry struct {
	Path      string
	Hash      string
	Namespace string
	Version   string
	Page      string
}

// Cache is a SQLite-backed build cache. Use ":memory:" for tests.
type Cache struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the cache database at dbPath.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, berrors.WrapError(err, berrors.CategoryCache, "open cache database")
	}
	c := &Cache{db: db}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, berrors.WrapError(err, berrors.CategoryCache, "initialize cache schema")
	}
	return c, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		namespace TEXT NOT NULL,
		version TEXT NOT NULL,
		page TEXT NOT NULL,
		built_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sources_hash ON sources(hash);
	`
	_, err := c.db.Exec(schema)
	return err
}

// HashContent returns the cache key for raw source content.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached entry for path when its stored hash matches.
func (c *Cache) Lookup(ctx context.Context, path, hash string) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT path, hash, namespace, version, page FROM sources WHERE path = ?", path)
	var e Entry
	if err := row.Scan(&e.Path, &e.Hash, &e.Namespace, &e.Version, &e.Page); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, berrors.WrapError(err, berrors.CategoryCache, "query cache")
	}
	if e.Hash != hash {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Store upserts the entry for one successfully processed file.
func (c *Cache) Store(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO sources (path, hash, namespace, version, page, built_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			namespace = excluded.namespace,
			version = excluded.version,
			page = excluded.page,
			built_at = excluded.built_at`,
		e.Path, e.Hash, e.Namespace, e.Version, e.Page, time.Now().Unix())
	if err != nil {
		return berrors.WrapError(err, berrors.CategoryCache, "store cache entry")
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

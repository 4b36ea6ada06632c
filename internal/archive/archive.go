// Package archive accumulates generator output units into a single growable
// zip archive per (file, generator) pair. The archive is re-persisted after
// every insertion so a partially generated archive is still valid when a
// later entry fails.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

type entry struct {
	name string
	data []byte
}

// Archive is an in-memory, append-only collection of named byte entries
// persisted to a zip file on disk.
type Archive struct {
	path    string
	entries []entry
}

// New creates an empty archive that persists to path. Nothing is written
// until the first entry is added.
func New(path string) *Archive {
	return &Archive{path: path}
}

// Path returns the on-disk location of the archive.
func (a *Archive) Path() string { return a.path }

// Len returns the number of entries added so far.
func (a *Archive) Len() int { return len(a.entries) }

// Names returns entry names in insertion order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Add appends a named entry and persists the whole archive. An entry added
// twice overwrites the earlier data under the same name.
func (a *Archive) Add(name string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	for i := range a.entries {
		if a.entries[i].name == name {
			a.entries[i].data = buf
			return a.persist()
		}
	}
	a.entries = append(a.entries, entry{name: name, data: buf})
	return a.persist()
}

// persist rewrites the zip file from the accumulated entries.
func (a *Archive) persist() error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o750); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	f, err := os.Create(a.path) // #nosec G304 - path is derived from the destination tree
	if err != nil {
		return fmt.Errorf("create archive %s: %w", a.path, err)
	}
	zw := zip.NewWriter(f)
	for _, e := range a.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fmt.Errorf("create archive entry %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return fmt.Errorf("write archive entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize archive %s: %w", a.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive %s: %w", a.path, err)
	}
	return nil
}

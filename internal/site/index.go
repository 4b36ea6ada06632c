// Package site accumulates the cross-file index and renders the model and
// index pages of the published site.
package site

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/ctosite/internal/toolchain"
)

// Entry is one successfully processed model file. Only current-scheme files
// ever produce an entry.
type Entry struct {
	PageRelPath string
	Model       toolchain.Model
	Version     string
}

// Index is the process-wide accumulator, created empty at the start of a run,
// appended to serially, and consumed exactly once by the assembler.
type Index struct {
	entries []Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index { return &Index{} }

// Append records one processed file.
func (x *Index) Append(e Entry) {
	x.entries = append(x.entries, e)
}

// Len returns the number of recorded entries.
func (x *Index) Len() int { return len(x.entries) }

// Sorted returns the entries stable-sorted by model namespace under locale
// collation rules.
func (x *Index) Sorted() []Entry {
	out := make([]Entry, len(x.entries))
	copy(out, x.entries)
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Model.Namespace(), out[j].Model.Namespace()) < 0
	})
	return out
}

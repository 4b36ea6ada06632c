package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ctosite/internal/logfields"
)

// Assembler writes the final site index after all files are processed.
type Assembler struct {
	renderer *Renderer
}

// NewAssembler returns an assembler using the given renderer.
func NewAssembler(r *Renderer) *Assembler {
	return &Assembler{renderer: r}
}

// Assemble sorts the accumulated index by namespace and writes the top-level
// index page once. The index reflects whatever subset of files succeeded.
func (a *Assembler) Assemble(outDir string, idx *Index) error {
	entries := idx.Sorted()
	page, err := a.renderer.IndexPage(entries)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, "index.html")
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- index page is public content
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return fmt.Errorf("write index page %s: %w", path, err)
	}
	slog.Info("Generated site index", logfields.Path(path), slog.Int("models", len(entries)))
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
	"git.home.luguber.info/inful/ctosite/internal/logfields"
	"git.home.luguber.info/inful/ctosite/internal/metrics"
	"git.home.luguber.info/inful/ctosite/internal/site"
	"git.home.luguber.info/inful/ctosite/internal/state"
	"git.home.luguber.info/inful/ctosite/internal/toolchain"
	"git.home.luguber.info/inful/ctosite/internal/versioning"
)

// processFile runs the per-file state machine. It returns the file's terminal
// state and never propagates an error: any failure aborts only this file's
// remaining steps.
func (r *Runner) processFile(ctx context.Context, rel string) metrics.FileOutcome {
	start := time.Now()
	srcPath := filepath.Join(r.opts.SrcDir, rel)
	destPath := filepath.Join(r.opts.OutDir, rel)
	destDir := filepath.Dir(destPath)
	base := strings.TrimSuffix(filepath.Base(rel), SourceExt)

	slog.Info("Processing model", logfields.RunID(r.runID), logfields.File(rel))

	data, err := os.ReadFile(srcPath) // #nosec G304 - path comes from the walked source tree
	if err != nil {
		return r.fail(rel, "read", berrors.WrapError(err, berrors.CategoryFileSystem, "read source"))
	}
	source := string(data)
	hash := state.HashContent(data)

	if outcome, done := r.serveFromCache(ctx, rel, hash); done {
		return outcome
	}

	binding := toolchain.Resolve(r.registry, source)
	caps := binding.Capabilities
	slog.Debug("Resolved toolchain", logfields.File(rel), logfields.Toolchain(binding.Version))

	container := binding.Compiler.NewContainer(caps.StrictMode)
	if caps.BootstrapSchema {
		if err := container.AddBootstrapModel(); err != nil {
			return r.fail(rel, "bootstrap", berrors.WrapError(err, berrors.CategoryCompile, "register bootstrap schema"))
		}
	}

	model, err := r.compile(binding, container, source, rel)
	if err != nil {
		return r.fail(rel, "compile", berrors.WrapError(err, berrors.CategoryCompile, "compile model"))
	}

	// Classification looks at the mirrored relative directory so version-like
	// segments in the output root cannot change the scheme.
	if scheme := versioning.Classify(filepath.Dir(rel)); scheme == versioning.SchemeLegacy {
		if err := writeDestFile(destPath, data); err != nil {
			return r.fail(rel, "copy", berrors.WrapError(err, berrors.CategoryFileSystem, "copy source"))
		}
		slog.Info("Legacy-scheme model copied without generation",
			logfields.RunID(r.runID), logfields.File(rel), logfields.Scheme(scheme.String()))
		return metrics.OutcomeSkipped
	}

	version := versioning.PublishedVersion(model.RegisteredName())

	// Registration arity differs between compiler lines.
	name := filepath.Base(rel)
	if caps.ASTParsing {
		err = container.AddModel(model, source, name, true)
	} else {
		err = container.AddModelLegacy(model, name, true)
	}
	if err != nil {
		return r.fail(rel, "register", berrors.WrapError(err, berrors.CategoryCompile, "register model"))
	}

	if !r.opts.Offline {
		if err := container.ResolveExternal(ctx); err != nil {
			// The model is already registered; generation proceeds with
			// whatever resolved. Must not vanish from the log.
			rerr := berrors.WrapError(err, berrors.CategoryResolve, "resolve external models")
			slog.Error("External model resolution failed",
				logfields.RunID(r.runID), logfields.File(rel), logfields.Error(rerr))
		}
	}

	diagramURL := r.generateDiagram(binding, container, destDir, base)
	r.generateASTDump(binding, model, destDir, base)
	for _, spec := range r.specs {
		r.invokeGenerator(binding, spec, destDir, base, container)
	}

	if err := writeDestFile(destPath, data); err != nil {
		return r.fail(rel, "copy", berrors.WrapError(err, berrors.CategoryFileSystem, "copy source"))
	}

	pageRel := filepath.ToSlash(strings.TrimSuffix(rel, SourceExt) + ".html")
	if err := r.renderPage(binding, model, version, destDir, base, diagramURL); err != nil {
		return r.fail(rel, "render", berrors.WrapError(err, berrors.CategoryRender, "render model page"))
	}

	r.index.Append(site.Entry{PageRelPath: pageRel, Model: model, Version: version})

	if r.cache != nil {
		entry := state.Entry{Path: rel, Hash: hash, Namespace: model.Namespace(), Version: version, Page: pageRel}
		if err := r.cache.Store(ctx, entry); err != nil {
			slog.Warn("Failed to update build cache", logfields.File(rel), logfields.Error(err))
		}
	}

	slog.Info("Model processed",
		logfields.RunID(r.runID),
		logfields.File(rel),
		logfields.Namespace(model.Namespace()),
		logfields.Version(version),
		logfields.Toolchain(binding.Version),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return metrics.OutcomeSuccess
}

// serveFromCache reconstructs the index entry for an unchanged file. The
// artifacts from the earlier run are still in place under the destination
// tree, so nothing is regenerated.
func (r *Runner) serveFromCache(ctx context.Context, rel, hash string) (metrics.FileOutcome, bool) {
	if r.cache == nil || r.opts.Force {
		return "", false
	}
	e, ok, err := r.cache.Lookup(ctx, rel, hash)
	if err != nil {
		slog.Warn("Build cache lookup failed", logfields.File(rel), logfields.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	r.index.Append(site.Entry{
		PageRelPath: e.Page,
		Model:       cachedModel{namespace: e.Namespace},
		Version:     e.Version,
	})
	slog.Info("Model unchanged, served from cache",
		logfields.RunID(r.runID), logfields.File(rel), logfields.Namespace(e.Namespace))
	return metrics.OutcomeCached, true
}

// compile builds the model through the AST path when the binding supports it,
// otherwise through legacy text parsing.
func (r *Runner) compile(b *toolchain.Binding, c toolchain.Container, source, rel string) (toolchain.Model, error) {
	if b.Capabilities.ASTParsing {
		ast, err := b.Compiler.ParseAST(source)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rel, err)
		}
		return b.Compiler.ModelFromAST(c, ast, source, rel)
	}
	return b.Compiler.ModelFromText(c, source, rel)
}

// renderPage renders and writes the per-model documentation page.
func (r *Runner) renderPage(b *toolchain.Binding, model toolchain.Model, version, destDir, base, diagramURL string) error {
	doc, err := site.RenderDoc(model.Doc())
	if err != nil {
		slog.Warn("Failed to render model doc comment", logfields.Namespace(model.Namespace()), logfields.Error(err))
		doc = ""
	}
	links := make([]site.GeneratorLink, 0, len(r.specs))
	for _, spec := range r.specs {
		links = append(links, site.GeneratorLink{
			Name: spec.Name,
			Href: base + "." + spec.Extension + ".zip",
		})
	}
	page, err := r.renderer.ModelPage(site.PageData{
		Namespace:  model.Namespace(),
		Version:    version,
		Toolchain:  b.Version,
		BaseName:   base,
		SourceURL:  base + SourceExt,
		DiagramURL: diagramURL,
		DocHTML:    doc,
		Generators: links,
	})
	if err != nil {
		return err
	}
	return writeDestFile(filepath.Join(destDir, base+".html"), page)
}

func (r *Runner) fail(rel, stage string, err error) metrics.FileOutcome {
	slog.Error("Model processing failed",
		logfields.RunID(r.runID),
		logfields.File(rel),
		logfields.Stage(stage),
		logfields.Error(err))
	return metrics.OutcomeFailed
}

// writeDestFile writes data into the destination tree, creating directories
// as needed.
func writeDestFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	// #nosec G306 -- published site content
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// cachedModel is the minimal model stand-in for index entries served from the
// build cache.
type cachedModel struct {
	namespace string
}

func (m cachedModel) Namespace() string      { return m.namespace }
func (m cachedModel) RegisteredName() string { return "" }
func (m cachedModel) SourceText() string     { return "" }
func (m cachedModel) Doc() string            { return "" }

package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/ctosite/internal/archive"
	"git.home.luguber.info/inful/ctosite/internal/config"
	berrors "git.home.luguber.info/inful/ctosite/internal/errors"
	"git.home.luguber.info/inful/ctosite/internal/logfields"
	"git.home.luguber.info/inful/ctosite/internal/toolchain"
)

// generateDiagram writes <base>.puml and returns its relative URL, or the
// empty string when diagram generation failed. Failures are isolated.
func (r *Runner) generateDiagram(b *toolchain.Binding, c toolchain.Container, destDir, base string) string {
	path := filepath.Join(destDir, base+".puml")
	var buf bytes.Buffer
	if err := b.Compiler.Diagram(c, &buf); err != nil {
		slog.Error("Diagram generation failed", logfields.Path(path), logfields.Error(err))
		return ""
	}
	if err := writeDestFile(path, buf.Bytes()); err != nil {
		slog.Error("Diagram write failed", logfields.Path(path), logfields.Error(err))
		return ""
	}
	return base + ".puml"
}

// generateASTDump writes <base>.ast.json. Failures are isolated.
func (r *Runner) generateASTDump(b *toolchain.Binding, m toolchain.Model, destDir, base string) {
	path := filepath.Join(destDir, base+".ast.json")
	var buf bytes.Buffer
	if err := b.Compiler.ASTDump(m, &buf); err != nil {
		slog.Error("AST dump failed", logfields.Path(path), logfields.Error(err))
		return
	}
	if err := writeDestFile(path, buf.Bytes()); err != nil {
		slog.Error("AST dump write failed", logfields.Path(path), logfields.Error(err))
	}
}

// invokeGenerator runs one code generator against the container, aggregating
// its output units into <base>.<ext>.zip. It never returns an error: a
// missing generator is a no-op, and traversal failures are logged and
// swallowed so the remaining generators still run. The archive persists after
// every unit, so units emitted before a failure survive.
func (r *Runner) invokeGenerator(b *toolchain.Binding, spec config.GeneratorSpec, destDir, base string, c toolchain.Container) {
	gen, ok := b.Compiler.Generator(spec.Visitor)
	if !ok {
		// Older and newer compiler lines legitimately lack some generators.
		slog.Debug("Generator not available in toolchain",
			logfields.Visitor(spec.Visitor), logfields.Toolchain(b.Version))
		return
	}

	arch := archive.New(filepath.Join(destDir, base+"."+spec.Extension+".zip"))
	sink := archive.NewSink(arch)

	defer func() {
		if rec := recover(); rec != nil {
			r.recorder.IncGeneratorFailure(spec.Visitor)
			slog.Error("Generator panicked",
				logfields.Visitor(spec.Visitor),
				logfields.Dest(destDir),
				slog.String("base", base),
				slog.String("panic", fmt.Sprint(rec)))
		}
	}()

	if err := c.Accept(gen, sink); err != nil {
		r.recorder.IncGeneratorFailure(spec.Visitor)
		gerr := berrors.WrapError(err, berrors.CategoryGenerate, "generator traversal failed")
		slog.Error("Generator failed",
			logfields.Visitor(spec.Visitor),
			logfields.Dest(destDir),
			slog.String("base", base),
			logfields.Error(gerr))
	}
}

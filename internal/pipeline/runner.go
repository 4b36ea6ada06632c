// Package pipeline drives the per-file build: toolchain resolution,
// compilation, artifact fan-out, and index accumulation. Files are processed
// strictly sequentially; a failure in one file never aborts the batch.
package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ctosite/internal/config"
	"git.home.luguber.info/inful/ctosite/internal/logfields"
	"git.home.luguber.info/inful/ctosite/internal/metrics"
	"git.home.luguber.info/inful/ctosite/internal/site"
	"git.home.luguber.info/inful/ctosite/internal/state"
	"git.home.luguber.info/inful/ctosite/internal/toolchain"
)

// SourceExt is the model source file extension the pipeline processes.
const SourceExt = ".cto"

// Options configure one build run.
type Options struct {
	SrcDir  string
	OutDir  string
	Filter  string // substring match against full source paths; empty matches all
	Offline bool   // disable external model resolution
	Force   bool   // ignore the build cache
}

// Runner executes the batch over a fixed file set.
type Runner struct {
	opts     Options
	registry *toolchain.Registry
	specs    []config.GeneratorSpec
	renderer *site.Renderer
	cache    *state.Cache // nil disables caching
	recorder metrics.Recorder
	runID    string
	index    *site.Index
}

// NewRunner assembles a runner. cache may be nil; recorder may be nil for no
// metrics.
func NewRunner(opts Options, registry *toolchain.Registry, specs []config.GeneratorSpec, renderer *site.Renderer, cache *state.Cache, recorder metrics.Recorder) *Runner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{
		opts:     opts,
		registry: registry,
		specs:    specs,
		renderer: renderer,
		cache:    cache,
		recorder: recorder,
		runID:    uuid.NewString(),
		index:    site.NewIndex(),
	}
}

// Discover walks the source tree and returns the relative paths of model
// files matching the configured filter, in walk (lexical) order.
func (r *Runner) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(r.opts.SrcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), SourceExt) {
			return nil
		}
		if r.opts.Filter != "" && !strings.Contains(filepath.ToSlash(path), r.opts.Filter) {
			return nil
		}
		rel, err := filepath.Rel(r.opts.SrcDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Run processes every discovered file and returns the accumulated index.
// Per-file failures are logged and counted, never propagated; only a failure
// to enumerate the source tree is an error.
func (r *Runner) Run(ctx context.Context) (*site.Index, error) {
	start := time.Now()
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}
	slog.Info("Starting model build",
		logfields.RunID(r.runID),
		slog.Int("files", len(files)),
		logfields.Path(r.opts.SrcDir),
		logfields.Dest(r.opts.OutDir))

	for _, rel := range files {
		fileStart := time.Now()
		outcome := r.processFile(ctx, rel)
		r.recorder.ObserveFileDuration(time.Since(fileStart))
		r.recorder.IncFileOutcome(outcome)
	}

	r.recorder.ObserveBuildDuration(time.Since(start))
	slog.Info("Model build finished",
		logfields.RunID(r.runID),
		slog.Int("indexed", r.index.Len()),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return r.index, nil
}

// Index exposes the accumulator, primarily for tests.
func (r *Runner) Index() *site.Index { return r.index }

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ctosite/internal/config"
	"git.home.luguber.info/inful/ctosite/internal/gitsource"
	"git.home.luguber.info/inful/ctosite/internal/logfields"
	"git.home.luguber.info/inful/ctosite/internal/metrics"
	"git.home.luguber.info/inful/ctosite/internal/pipeline"
	"git.home.luguber.info/inful/ctosite/internal/site"
	"git.home.luguber.info/inful/ctosite/internal/state"
	"git.home.luguber.info/inful/ctosite/internal/toolchain"
	"git.home.luguber.info/inful/ctosite/internal/versioning"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"ctosite.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Filter  string `arg:"" optional:"" help:"Only process source paths containing this substring"`
		Src     string `help:"Source tree of model files"`
		Out     string `short:"o" help:"Output directory for the generated site"`
		RootURL string `help:"Root URL used in rendered pages"`
		Offline *bool  `help:"Disable external model resolution"`
		Force   bool   `short:"f" help:"Ignore the build cache"`
		Repo    string `help:"Git URL to clone as the source tree"`
		Branch  string `help:"Branch to clone with --repo"`
		Cache   string `help:"Build cache database path (empty disables caching)"`
	} `cmd:"" help:"Build the model site from the source tree"`

	Discover struct {
		Src string `help:"Source tree of model files"`
	} `cmd:"" help:"List model files and their resolved toolchain versions without building"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := config.LoadEnvFile(); err != nil {
		slog.Debug("No environment file loaded", "error", err.Error())
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		os.Exit(1)
	}
	cfg.ApplyEnv()

	switch {
	case strings.HasPrefix(ctx.Command(), "build"):
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case ctx.Command() == "discover":
		if err := runDiscover(cfg); err != nil {
			slog.Error("Discover failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func runBuild(cfg *config.Config) error {
	applyBuildFlags(cfg)

	srcDir := cfg.Source
	if CLI.Build.Repo != "" {
		fetcher, err := gitsource.NewFetcher()
		if err != nil {
			return err
		}
		defer func() {
			if err := fetcher.Cleanup(); err != nil {
				slog.Warn("Failed to cleanup clone workspace", logfields.Error(err))
			}
		}()
		srcDir, err = fetcher.Clone(CLI.Build.Repo, CLI.Build.Branch)
		if err != nil {
			return err
		}
	}

	registry, err := toolchain.FromConfig(cfg.Toolchains)
	if err != nil {
		return fmt.Errorf("%w (registered compilers: %v)", err, toolchain.RegisteredCompilers())
	}

	var cache *state.Cache
	if cfg.Cache != "" {
		cache, err = state.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				slog.Warn("Failed to close build cache", logfields.Error(err))
			}
		}()
	}

	renderer, err := site.NewRenderer(cfg.RootURL)
	if err != nil {
		return err
	}
	recorder := metrics.NewPrometheusRecorder()

	runner := pipeline.NewRunner(pipeline.Options{
		SrcDir:  srcDir,
		OutDir:  cfg.Output,
		Filter:  CLI.Build.Filter,
		Offline: cfg.Offline,
		Force:   CLI.Build.Force,
	}, registry, cfg.Generators, renderer, cache, recorder)

	idx, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	if err := site.NewAssembler(renderer).Assemble(cfg.Output, idx); err != nil {
		return err
	}
	recorder.Summary()
	return nil
}

func applyBuildFlags(cfg *config.Config) {
	if CLI.Build.Src != "" {
		cfg.Source = CLI.Build.Src
	}
	if CLI.Build.Out != "" {
		cfg.Output = CLI.Build.Out
	}
	if CLI.Build.RootURL != "" {
		cfg.RootURL = CLI.Build.RootURL
	}
	if CLI.Build.Cache != "" {
		cfg.Cache = CLI.Build.Cache
	}
	// Pointer so an explicit --offline=false still overrides the env value.
	if CLI.Build.Offline != nil {
		cfg.Offline = *CLI.Build.Offline
	}
}

func runDiscover(cfg *config.Config) error {
	if CLI.Discover.Src != "" {
		cfg.Source = CLI.Discover.Src
	}
	// Resolution needs only version identifiers, not linked compilers.
	registry := toolchain.ResolutionRegistry(cfg.Toolchains)

	runner := pipeline.NewRunner(pipeline.Options{SrcDir: cfg.Source}, registry, nil, nil, nil, nil)
	files, err := runner.Discover()
	if err != nil {
		return err
	}
	slog.Info("Discovery completed", slog.Int("files", len(files)))
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(cfg.Source, rel)) // #nosec G304 - walked source tree
		if err != nil {
			slog.Error("Failed to read model", logfields.File(rel), logfields.Error(err))
			continue
		}
		binding := toolchain.Resolve(registry, string(data))
		scheme := versioning.Classify(filepath.Dir(rel))
		slog.Info("Model discovered",
			logfields.File(rel),
			logfields.Toolchain(binding.Version),
			logfields.Scheme(scheme.String()))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/pipeline"
	"github.com/locationtech/geogig-manpages/internal/search"
	"github.com/locationtech/geogig-manpages/internal/storage"
)

type buildOptions struct {
	sourceDir string
	outputDir string
	builders  []string
	jobs      int
	gzip      bool
	force     bool
	lint      bool
	noIndex   bool
}

func (b *buildOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&b.sourceDir, "source", "", "directory of page sources; empty renders catalog metadata only")
	flags.StringVarP(&b.outputDir, "output", "o", "_build", "output directory")
	flags.StringSliceVar(&b.builders, "builder", pipeline.DefaultBuilders, "builders to run (man, html, latex)")
	flags.IntVarP(&b.jobs, "jobs", "j", runtime.NumCPU(), "concurrent page renders")
	flags.BoolVar(&b.gzip, "gzip", false, "also write gzipped man pages")
	flags.BoolVar(&b.force, "force", false, "rewrite outputs even when unchanged")
	flags.BoolVar(&b.lint, "lint", false, "check man pages with mandoc -T lint")
	flags.BoolVar(&b.noIndex, "no-index", false, "skip the whatis search index")
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	b := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the man pages and manuals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := runBuild(ctx, opts, b, nil)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "built %d pages into %s: %d written, %d unchanged\n",
				summary.Pages, b.outputDir, summary.Written, summary.Skipped)
			return nil
		},
	}
	b.register(cmd)
	return cmd
}

// runBuild loads the inputs and runs one build. When runner is not nil
// it receives the configured runner before the build starts.
func runBuild(ctx context.Context, opts *rootOptions, b *buildOptions, runner func(*pipeline.Runner)) (pipeline.Summary, error) {
	settings, err := opts.loadSettings()
	if err != nil {
		return pipeline.Summary{}, err
	}
	cat, err := opts.loadCatalog()
	if err != nil {
		return pipeline.Summary{}, err
	}
	logger := opts.log()

	store := storage.NewFSStorage(b.outputDir)
	store.Force = b.force

	r := &pipeline.Runner{
		Catalog:   cat,
		Settings:  *settings,
		SourceDir: b.sourceDir,
		BaseDir:   opts.baseDir(b.sourceDir),
		ThemePath: settings.EffectiveThemePath(os.LookupEnv),
		Storage:   store,
		Builders:  b.builders,
		Jobs:      b.jobs,
		Gzip:      b.gzip,
		Logger:    logger,
	}
	if b.lint {
		r.Linter = pipeline.NewLinter("")
	}
	if !b.noIndex {
		indexer, err := search.NewSQLiteIndexer(filepath.Join(b.outputDir, search.DefaultFile))
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer func() {
			if err := indexer.Close(); err != nil {
				logger.Error("close indexer", "error", err)
			}
		}()
		r.Indexer = indexer
	}
	if runner != nil {
		runner(r)
	}

	summary, err := r.Run(ctx)
	if err != nil {
		if indexer, ok := r.Indexer.(*search.SQLiteIndexer); ok {
			_ = indexer.Rollback()
		}
		return summary, fmt.Errorf("build: %w", err)
	}
	for _, err := range settings.VersionErrors() {
		logger.Warn("unparsable version", "error", err)
	}
	if settings.ReleaseBehindVersion() {
		logger.Warn("release sorts before version", "release", settings.Release, "version", settings.Version)
	}
	return summary, nil
}

// buildInputs lists the paths whose changes require a rebuild.
func buildInputs(opts *rootOptions, b *buildOptions) []string {
	var paths []string
	for _, p := range []string{b.sourceDir, opts.configPath, opts.catalogPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

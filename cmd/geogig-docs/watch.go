package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/locationtech/geogig-manpages/internal/pipeline"
	"github.com/locationtech/geogig-manpages/internal/watch"
	"github.com/locationtech/geogig-manpages/internal/web"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	b := &buildOptions{}
	var addr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever a source or settings file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := opts.log()
			inputs := buildInputs(opts, b)
			if len(inputs) == 0 {
				return errors.New("nothing to watch: pass --source, --config or --catalog")
			}

			var current atomic.Pointer[pipeline.Runner]
			build := func(ctx context.Context) error {
				_, err := runBuild(ctx, opts, b, func(r *pipeline.Runner) { current.Store(r) })
				return err
			}
			if err := build(ctx); err != nil {
				// Keep watching so the next edit can fix the build.
				logger.Error("initial build failed", "error", err)
			}

			w := &watch.Watcher{
				Paths:  inputs,
				Ignore: []string{b.outputDir},
				Build:  build,
				Logger: logger,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return w.Run(gctx) })
			if addr != "" {
				server := web.NewServer(web.Options{
					OutputDir: b.outputDir,
					Status: func() pipeline.Status {
						if r := current.Load(); r != nil {
							return r.Status()
						}
						return pipeline.Status{Stage: pipeline.StageIdle}
					},
				}, logger)
				defer func() { _ = server.Close() }()
				g.Go(func() error { return server.ListenAndServe(gctx, addr) })
			}
			return g.Wait()
		},
	}
	b.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "also serve the output on this address")
	return cmd
}

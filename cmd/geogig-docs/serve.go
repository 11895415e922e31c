package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		outputDir string
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview a built output directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			server := web.NewServer(web.Options{
				OutputDir: outputDir,
				SiteURL:   settings.HTMLBaseURL,
				Project:   settings.Project,
			}, opts.log())
			defer func() { _ = server.Close() }()
			return server.ListenAndServe(ctx, addr)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output", "o", "_build", "build output directory")
	flags.StringVar(&addr, "addr", "localhost:8080", "HTTP bind address")
	return cmd
}

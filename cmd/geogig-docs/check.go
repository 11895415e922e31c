package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/pipeline"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var sourceDir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog, settings and sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.log()
			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			for _, err := range settings.VersionErrors() {
				logger.Warn("unparsable version", "error", err)
			}
			if settings.ReleaseBehindVersion() {
				logger.Warn("release sorts before version", "release", settings.Release, "version", settings.Version)
			}

			if sourceDir != "" {
				if _, err := pipeline.LoadSources(cmd.Context(), sourceDir, cat, settings); err != nil {
					var srcErr *pipeline.SourceError
					if errors.As(err, &srcErr) {
						return fmt.Errorf("page %s: %w", srcErr.Page, err)
					}
					return err
				}
				orphans, err := pipeline.FindOrphans(sourceDir, cat, settings)
				if err != nil {
					return err
				}
				for _, name := range orphans {
					logger.Warn("source not referenced by any page", "source", name)
				}
			}

			printf(cmd.OutOrStdout(), "ok: %d pages, release %s\n", cat.Len(), settings.DisplayRelease())
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceDir, "source", "", "also parse the page sources in this directory")
	return cmd
}

// Command geogig-docs builds, checks and previews the GeoGig man pages.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/catalog"
	"github.com/locationtech/geogig-manpages/internal/config"
	"github.com/locationtech/geogig-manpages/internal/logging"
)

type rootOptions struct {
	configPath  string
	catalogPath string
	logLevel    string
	logFormat   string

	logger *slog.Logger
}

func main() {
	opts := &rootOptions{}
	if err := newRootCmd(opts).Execute(); err != nil {
		logger := opts.logger
		if logger == nil {
			logger = logging.BuildLogger(opts.logLevel, opts.logFormat, nil)
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "geogig-docs",
		Short:         "Build the GeoGig man pages",
		Long:          "Render the GeoGig command reference as man pages, an HTML manual and LaTeX, and preview the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.logger = logging.BuildLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "settings file (YAML, JSON or TOML); env "+config.ConfigFileEnv)
	flags.StringVar(&opts.catalogPath, "catalog", "", "YAML page catalog replacing the built-in GeoGig table")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(
		newBuildCmd(opts),
		newCheckCmd(opts),
		newListCmd(opts),
		newSettingsCmd(opts),
		newAproposCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func (o *rootOptions) loadSettings() (*config.Settings, error) {
	s, err := config.LoadOptional(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	if o.catalogPath == "" {
		return catalog.GeoGig(), nil
	}
	c, err := catalog.LoadFile(o.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// baseDir is the directory relative theme and logo paths are resolved
// against: the settings file's directory, else the source directory.
func (o *rootOptions) baseDir(sourceDir string) string {
	if o.configPath != "" {
		if _, err := os.Stat(o.configPath); err == nil {
			return filepath.Dir(o.configPath)
		}
	}
	if sourceDir != "" {
		return sourceDir
	}
	return "."
}

func (o *rootOptions) log() *slog.Logger {
	if o.logger == nil {
		return logging.Discard()
	}
	return o.logger
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

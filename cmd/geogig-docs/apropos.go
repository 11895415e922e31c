package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/search"
)

var errNothingAppropriate = errors.New("nothing appropriate")

func newAproposCmd(opts *rootOptions) *cobra.Command {
	var (
		outputDir string
		section   int
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "apropos <terms>...",
		Short: "Search the built pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			searcher, err := search.NewSQLiteSearcher(filepath.Join(outputDir, search.DefaultFile))
			if err != nil {
				return err
			}
			defer func() { _ = searcher.Close() }()

			resp, err := searcher.Search(cmd.Context(), strings.Join(args, " "), section, limit, 0)
			if err != nil {
				return err
			}
			if len(resp.Results) == 0 {
				return errNothingAppropriate
			}
			for _, r := range resp.Results {
				printf(cmd.OutOrStdout(), "%s - %s\n", r.Title(), r.Description)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output", "o", "_build", "build output directory holding the index")
	flags.IntVarP(&section, "section", "s", 0, "restrict to one manual section")
	flags.IntVarP(&limit, "limit", "n", 20, "maximum results")
	return cmd
}

package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/locationtech/geogig-manpages/internal/catalog"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the pages of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			if asYAML {
				return catalog.Encode(cmd.OutOrStdout(), cat)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range cat.Entries() {
				printf(tw, "%s\t%s\t%s\n", e.Title(), e.FileName(), e.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the catalog as a YAML catalog file")
	return cmd
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func buildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every discovered workspace package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			names := make([]string, 0, len(a.Catalog.Nodes))
			for name := range a.Catalog.Nodes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

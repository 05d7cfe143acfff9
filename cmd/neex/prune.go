package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func buildPruneCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "prune [package...]",
		Short: "Print the pruned set of workspace packages needed to build the given scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			scope := args
			if all {
				scope = nil
				for name := range a.Catalog.Nodes {
					scope = append(scope, name)
				}
			}
			if len(scope) == 0 {
				return fmt.Errorf("prune: no packages given, pass names or --all")
			}

			sub, err := a.Graph.Prune(scope...)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(sub.Nodes))
			for name := range sub.Nodes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "prune against the entire workspace instead of a named scope")
	return cmd
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func buildGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the workspace dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			names := make([]string, 0, len(a.Graph.Edges))
			for name := range a.Graph.Edges {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				deps := a.Graph.Edges[name]
				sort.Strings(deps)
				if len(deps) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
					continue
				}
				for _, dep := range deps {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", name, dep)
				}
			}
			return nil
		},
	}
}

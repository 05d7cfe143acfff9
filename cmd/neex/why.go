package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func buildWhyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "why <package>",
		Short: "Explain which dependency chain makes each package depend on the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			chains := a.Graph.ExplainAffected(args[0])
			names := make([]string, 0, len(chains))
			for name := range chains {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, strings.Join(chains[name], " -> "))
			}
			return nil
		},
	}
}

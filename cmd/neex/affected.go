package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildAffectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "affected <package>",
		Short: "List the given package and every package transitively dependent on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, name := range a.Graph.Affected(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

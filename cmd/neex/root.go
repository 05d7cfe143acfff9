package main

import (
	"github.com/spf13/cobra"
)

var verbosity int

// buildRootCmd assembles the full neex command tree.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "neex",
		Short:         "Incremental monorepo task runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	root.AddCommand(
		buildRunCmd(),
		buildBuildAliasCmd(),
		buildRunAllCmd(),
		buildGraphCmd(),
		buildAffectedCmd(),
		buildListCmd(),
		buildWhyCmd(),
		buildHashCmd(),
		buildPruneCmd(),
		buildLoginCmd(),
		buildLogoutCmd(),
		buildInfoCmd(),
		buildStatusCmd(),
		buildDaemonCmd(),
	)
	return root
}

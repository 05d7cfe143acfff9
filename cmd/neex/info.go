package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildInfoCmd reports the static picture of the current repo: its root,
// discovered packages, and local cache size.
func buildInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show repo root, workspace package count, and local cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			size, err := a.Store.Size()
			if err != nil {
				return fmt.Errorf("reading local cache size: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "root: %s\n", a.Root.ToString())
			fmt.Fprintf(cmd.OutOrStdout(), "packages: %d\n", len(a.Catalog.Nodes))
			fmt.Fprintf(cmd.OutOrStdout(), "local cache entries: %d\n", size)
			if a.Config.Remote.Enabled {
				fmt.Fprintf(cmd.OutOrStdout(), "remote cache: %s (bucket %s)\n", a.Config.Remote.Endpoint, a.Config.Remote.Bucket)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "remote cache: disabled")
			}
			return nil
		},
	}
}

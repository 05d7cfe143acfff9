package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/neex-build/neex/internal/ipc"
	"github.com/neex-build/neex/internal/login"
)

// buildStatusCmd reports both halves of neex's ambient state: remote cache
// login status and whether a daemon is currently reachable for this repo.
func buildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show remote cache login state and daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := login.GetStatus(afero.NewOsFs())
			if err != nil {
				return err
			}
			if st.LoggedIn {
				fmt.Fprintf(cmd.OutOrStdout(), "remote cache: logged in (%s)\n", st.Endpoint)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "remote cache: logged out")
			}

			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			client := ipc.NewClient(a.SockPath())
			cachedFiles, dbSize, err := client.Stats()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "daemon: not running")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon: running (%d files tracked, %d bytes on disk)\n", cachedFiles, dbSize)
			return nil
		},
	}
}

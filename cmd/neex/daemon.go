package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neex-build/neex/internal/daemon"
	"github.com/neex-build/neex/internal/ipc"
	"github.com/neex-build/neex/internal/peer"
	"github.com/neex-build/neex/internal/turbopath"
)

func buildDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the background watcher/cache daemon",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(buildDaemonRunCmd(), buildDaemonStopCmd())
	return cmd
}

// buildDaemonRunCmd starts the daemon in the foreground: it opens the
// persisted hash state, performs an initial full scan, starts the
// filesystem watcher, joins the LAN peer network, and serves IPC requests
// until a Shutdown request arrives or the process is killed.
func buildDaemonRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			statePath := turbopath.AbsoluteSystemPath(a.Root.ToString() + "/.neex/daemon-state.db")
			state, err := daemon.OpenState(statePath, a.Logger.Named("state"))
			if err != nil {
				return fmt.Errorf("opening daemon state: %w", err)
			}
			defer state.Close()

			if err := state.FullScan(a.Root); err != nil {
				return fmt.Errorf("initial scan: %w", err)
			}

			watcher, err := daemon.New(a.Root.ToString(), nil, a.Logger.Named("watcher"))
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer watcher.Close()

			peerServer, err := peer.NewServer(a.Store, a.Logger.Named("peer-server"))
			if err != nil {
				return fmt.Errorf("starting peer artifact server: %w", err)
			}
			defer peerServer.Close()
			go func() {
				if err := peerServer.Serve(); err != nil {
					a.Logger.Debug("peer artifact server stopped", "error", err)
				}
			}()

			registry, err := peer.NewRegistry(peerServer.Port(), a.Logger.Named("peer-discovery"))
			if err != nil {
				return fmt.Errorf("starting peer discovery: %w", err)
			}
			defer registry.Shutdown()

			browseCtx, cancelBrowse := context.WithCancel(context.Background())
			defer cancelBrowse()
			go func() {
				if err := registry.Browse(browseCtx); err != nil {
					a.Logger.Debug("peer browse stopped", "error", err)
				}
			}()

			server, err := ipc.Listen(a.SockPath(), a.PidPath(), a.Root, state, watcher, a.Logger.Named("ipc"))
			if err != nil {
				return fmt.Errorf("starting ipc server: %w", err)
			}
			defer server.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "daemon listening at %s\n", a.SockPath())
			return server.Serve()
		},
	}
}

func buildDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask a running daemon to shut down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbosity)
			if err != nil {
				return err
			}
			defer a.Close()

			client := ipc.NewClient(a.SockPath())
			if err := client.Shutdown(); err != nil {
				return fmt.Errorf("stopping daemon: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
			return nil
		},
	}
}

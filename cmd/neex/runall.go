package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neex-build/neex/internal/core"
	"github.com/neex-build/neex/internal/runner"
	"github.com/neex-build/neex/internal/ui"
	"github.com/neex-build/neex/internal/util"
)

func buildRunAllCmd() *cobra.Command {
	concurrency := 0
	cmd := &cobra.Command{
		Use:   "run-all <script>",
		Short: "Run a script across every workspace package in dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(args[0], concurrency)
		},
	}
	cmd.Flags().Var(&util.ConcurrencyValue{Value: &concurrency}, "concurrency",
		"maximum number of packages to run concurrently: a positive integer, or a percentage of CPU cores like 50% (default: hardware parallelism)")
	return cmd
}

// runAll schedules script across every workspace package that declares it,
// respecting the dependency graph.
func runAll(script string, concurrency int) error {
	a, err := newApp(verbosity)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := &runner.Engine{Store: a.Store, Remote: a.Remote, Logger: a.Logger.Named("runner")}

	var tasks []core.SchedulerTask
	for name, node := range a.Catalog.Nodes {
		if _, ok := node.Scripts[script]; !ok {
			continue
		}
		name, node := name, node
		tasks = append(tasks, core.SchedulerTask{
			Name: name,
			Deps: a.Graph.Edges[name],
			Run: func() error {
				pkgDir := node.Dir.RestoreAnchor(a.Root)
				manifestPath := node.ManifestPath.RestoreAnchor(a.Root)
				result, err := engine.Run(context.Background(), runner.Request{
					Script:       script,
					PackageDir:   pkgDir,
					ManifestPath: manifestPath,
					Stdout:       os.Stdout,
					Stderr:       os.Stderr,
				})
				if err != nil {
					return err
				}
				switch result.Source {
				case runner.SourceLocalCache:
					ui.Print(os.Stdout, ui.Cached(name))
				case runner.SourceRemoteCache, runner.SourcePeerCache:
					ui.Print(os.Stdout, ui.Cloud(name))
				default:
					ui.Print(os.Stdout, ui.Ok(name, result.Output.DurationMS))
				}
				if result.Output.ExitCode != 0 {
					return fmt.Errorf("exited with status %d", result.Output.ExitCode)
				}
				return nil
			},
		})
	}

	opts := core.DefaultOptions()
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	results := core.Run(tasks, opts)

	ok, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case core.Completed:
			ok++
		case core.Failed:
			failed++
			ui.Print(os.Stdout, ui.Failed(r.Name, r.Err.Error()))
		case core.Cancelled:
			failed++
			ui.Print(os.Stdout, ui.Failed(r.Name, "cancelled"))
		}
	}
	ui.Summary(os.Stdout, ok, failed)

	if failed > 0 {
		return fmt.Errorf("%d task(s) failed", failed)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neex-build/neex/internal/cachekey"
	"github.com/neex-build/neex/internal/runner"
	"github.com/neex-build/neex/internal/turbopath"
	"github.com/neex-build/neex/internal/ui"
)

func buildRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script in the package rooted at the current directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(args[0])
		},
	}
	return cmd
}

func buildBuildAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Alias for `run build`",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne("build")
		},
	}
}

// runOne runs a single script in the current package and renders its
// one-line summary.
func runOne(script string) error {
	a, err := newApp(verbosity)
	if err != nil {
		return err
	}
	defer a.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	manifestPath := turbopath.AbsoluteSystemPath(filepath.Join(cwd, "package.json"))

	engine := &runner.Engine{Store: a.Store, Remote: a.Remote, Logger: a.Logger.Named("runner")}
	result, err := engine.Run(context.Background(), runner.Request{
		Script:       script,
		PackageDir:   turbopath.AbsoluteSystemPath(cwd),
		ManifestPath: manifestPath,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	})
	if err != nil {
		ui.Print(os.Stdout, ui.Failed(script, err.Error()))
		return err
	}
	a.Logger.Debug("task finished", "script", script, "key", cachekey.ShortDigest(result.Key), "source", result.Source)

	switch result.Source {
	case runner.SourceLocalCache:
		ui.Print(os.Stdout, ui.Cached(script))
	case runner.SourceRemoteCache, runner.SourcePeerCache:
		ui.Print(os.Stdout, ui.Cloud(script))
	default:
		ui.Print(os.Stdout, ui.Ok(script, result.Output.DurationMS))
	}

	if result.Output.ExitCode != 0 {
		return fmt.Errorf("script %q exited with status %d", script, result.Output.ExitCode)
	}
	return nil
}

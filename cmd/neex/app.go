package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/neex-build/neex/internal/config"
	"github.com/neex-build/neex/internal/runcache"
	"github.com/neex-build/neex/internal/turbopath"
	"github.com/neex-build/neex/internal/workspace"
)

// app bundles the repo root, workspace catalog/graph, and opened caches
// that every subcommand needs, built fresh once per invocation instead of
// threaded through cobra's context.
type app struct {
	Root    turbopath.AbsoluteSystemPath
	Catalog *workspace.Catalog
	Graph   *workspace.Graph
	Config  *config.Config
	Store   *runcache.Store
	Remote  *runcache.Remote
	Logger  hclog.Logger
}

// newApp finds the repo root upward from cwd (the first ancestor
// containing a package.json), discovers the workspace catalog and graph,
// loads configuration, and opens the local result cache.
func newApp(verbosity int) (*app, error) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "neex",
		Level:  levelFromVerbosity(verbosity),
		Output: os.Stderr,
	})

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifestPath, err := turbopath.FindupFrom("package.json", cwd)
	if err != nil {
		return nil, err
	}
	if manifestPath == "" {
		return nil, fmt.Errorf("no package.json found in %s or any parent directory", cwd)
	}
	root := turbopath.AbsoluteSystemPath(filepath.Dir(manifestPath))

	catalog, err := workspace.Discover(root, logger.Named("workspace"))
	if err != nil {
		return nil, fmt.Errorf("discovering workspace: %w", err)
	}
	graph, err := workspace.BuildGraph(catalog)
	if err != nil {
		return nil, fmt.Errorf("building workspace graph: %w", err)
	}

	cfg, err := config.Load(afero.NewOsFs(), root.ToString())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	storePath := turbopath.AbsoluteSystemPath(filepath.Join(root.ToString(), ".neex", "cache", "store.db"))
	store, err := runcache.OpenStore(storePath)
	if err != nil {
		return nil, fmt.Errorf("opening result cache: %w", err)
	}

	remote, err := runcache.NewRemote(runcache.RemoteConfig{
		Endpoint:  cfg.Remote.Endpoint,
		Bucket:    cfg.Remote.Bucket,
		Region:    cfg.Remote.Region,
		AccessKey: cfg.Remote.AccessKey,
		SecretKey: cfg.Remote.SecretKey,
		Secure:    cfg.Remote.Secure,
		Enabled:   cfg.Remote.Enabled,
	}, logger.Named("remote-cache"))
	if err != nil {
		return nil, fmt.Errorf("constructing remote cache: %w", err)
	}

	return &app{
		Root:    root,
		Catalog: catalog,
		Graph:   graph,
		Config:  cfg,
		Store:   store,
		Remote:  remote,
		Logger:  logger,
	}, nil
}

func (a *app) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

// SockPath and PidPath are the daemon's well-known IPC socket and pidfile
// locations, one per repo, rooted under .neex next to the local cache.
func (a *app) SockPath() string {
	return filepath.Join(a.Root.ToString(), ".neex", "daemon.sock")
}

func (a *app) PidPath() string {
	return filepath.Join(a.Root.ToString(), ".neex", "daemon.pid")
}

func levelFromVerbosity(v int) hclog.Level {
	switch {
	case v >= 2:
		return hclog.Trace
	case v == 1:
		return hclog.Debug
	default:
		return hclog.Warn
	}
}

package peer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/neex-build/neex/internal/runcache"
	"github.com/neex-build/neex/internal/turbopath"
)

func openTestStore(t *testing.T) *runcache.Store {
	t.Helper()
	path := turbopath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "cache.db"))
	store, err := runcache.OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestArtifactServerServesCachedEntry(t *testing.T) {
	store := openTestStore(t)
	out := runcache.TaskOutput{Stdout: []string{"hello"}, ExitCode: 0}
	if err := store.Put("build:abc123", out); err != nil {
		t.Fatal(err)
	}

	srv, err := NewServer(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	go func() { _ = srv.Serve() }()

	registry := &Registry{peers: map[string]Peer{
		"p1": {ID: "p1", Host: "127.0.0.1", Port: srv.Port()},
	}}

	body, found, err := registry.FetchFromNetwork(context.Background(), "build:abc123")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected the artifact server to serve the cached entry")
	}
	if len(body) == 0 {
		t.Fatal("expected a non-empty body")
	}
}

func TestArtifactServerReturns404OnMiss(t *testing.T) {
	store := openTestStore(t)
	srv, err := NewServer(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	go func() { _ = srv.Serve() }()

	registry := &Registry{peers: map[string]Peer{
		"p1": {ID: "p1", Host: "127.0.0.1", Port: srv.Port()},
	}}

	_, found, err := registry.FetchFromNetwork(context.Background(), "missing:key")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected a cache miss to report not-found")
	}
}

func TestFetchFromNetworkExhaustionReturnsNotFound(t *testing.T) {
	registry := &Registry{peers: map[string]Peer{}}
	_, found, err := registry.FetchFromNetwork(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected an empty peer map to report not-found")
	}
}

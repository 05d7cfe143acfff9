package ipc

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/neex-build/neex/internal/daemon"
	"github.com/neex-build/neex/internal/turbopath"
)

func startTestServer(t *testing.T) (*Client, *Server, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix domain sockets")
	}

	dir, err := os.MkdirTemp("", "neex-ipc-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	root := filepath.Join(dir, "repo")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := daemon.OpenState(turbopath.AbsoluteSystemPath(filepath.Join(dir, "daemon.db")), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = state.Close() })
	if err := state.FullScan(turbopath.AbsoluteSystemPath(root)); err != nil {
		t.Fatal(err)
	}

	watcher, err := daemon.New(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = watcher.Close() })

	sockPath := filepath.Join(dir, "daemon.sock")
	pidPath := filepath.Join(dir, "daemon.pid")
	server, err := Listen(sockPath, pidPath, turbopath.AbsoluteSystemPath(root), state, watcher, nil)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		_ = server.Serve()
	}()
	t.Cleanup(func() { _ = server.Close() })

	// Give the accept loop a moment to bind/start.
	time.Sleep(50 * time.Millisecond)

	return NewClient(sockPath), server, root
}

func TestGetHashReturnsKnownDigest(t *testing.T) {
	client, _, root := startTestServer(t)
	hash, found, err := client.GetHash(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !found || hash == "" {
		t.Fatalf("expected a known digest for a.txt, got found=%v hash=%q", found, hash)
	}
}

func TestGetHashOnUnknownPathReturnsNotFound(t *testing.T) {
	client, _, root := startTestServer(t)
	_, found, err := client.GetHash(filepath.Join(root, "nope.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected not-found for an untracked path")
	}
}

func TestGlobalHashReturnsNonEmptyDigest(t *testing.T) {
	client, _, _ := startTestServer(t)
	hash, err := client.GlobalHash()
	if err != nil {
		t.Fatal(err)
	}
	if hash == "" {
		t.Fatal("expected a non-empty global fingerprint")
	}
}

func TestGetChangedReportsNewFile(t *testing.T) {
	client, _, root := startTestServer(t)

	baseline, err := client.GetChanged(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	_ = baseline

	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.Rescan(); err != nil {
		t.Fatal(err)
	}

	changed, err := client.GetChanged(map[string]string{filepath.Join(root, "a.txt"): "stale-or-whatever"})
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, c := range changed {
		found[c] = true
	}
	if !found[filepath.Join(root, "b.txt")] {
		t.Fatalf("expected new file to be reported changed, got %+v", changed)
	}
}

func TestStatsReportsCachedFileCount(t *testing.T) {
	client, _, _ := startTestServer(t)
	cached, _, err := client.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if cached != 1 {
		t.Fatalf("expected 1 cached file from the fixture, got %d", cached)
	}
}

func TestShutdownClosesWithoutResponseBody(t *testing.T) {
	client, server, _ := startTestServer(t)
	if err := client.Shutdown(); err != nil {
		t.Fatalf("expected Shutdown to tolerate EOF, got %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if server.shuttingDown {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected server to observe the shutdown request")
}

package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/neex-build/neex/internal/runcache"
	"github.com/neex-build/neex/internal/turbopath"
)

func writeTestManifest(t *testing.T, dir string, scripts map[string]string) turbopath.AbsoluteSystemPath {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(map[string]interface{}{"name": "pkg", "scripts": scripts})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "package.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return turbopath.AbsoluteSystemPath(path)
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	storePath := turbopath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "cache", "store.db"))
	store, err := runcache.OpenStore(storePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &Engine{Store: store}
}

func TestRunMissingScriptReturnsErrScriptNotFound(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("spawns a POSIX shell")
	}
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir, map[string]string{"build": "echo hi"})
	engine := openTestEngine(t)

	_, err := engine.Run(context.Background(), Request{
		Script:       "nonexistent",
		PackageDir:   turbopath.AbsoluteSystemPath(dir),
		ManifestPath: manifestPath,
	})
	if err != ErrScriptNotFound {
		t.Fatalf("expected ErrScriptNotFound, got %v", err)
	}
}

func TestRunExecutesAndCachesOnFirstMiss(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("spawns a POSIX shell")
	}
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir, map[string]string{"build": "echo hello-world"})
	engine := openTestEngine(t)

	var stdout bytes.Buffer
	result, err := engine.Run(context.Background(), Request{
		Script:       "build",
		PackageDir:   turbopath.AbsoluteSystemPath(dir),
		ManifestPath: manifestPath,
		Stdout:       &stdout,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Source != SourceExecuted {
		t.Fatalf("expected first run to execute, got source %s", result.Source)
	}
	if len(result.Output.Stdout) != 1 || result.Output.Stdout[0] != "hello-world" {
		t.Fatalf("expected captured stdout line 'hello-world', got %+v", result.Output.Stdout)
	}
	if stdout.String() != "hello-world\n" {
		t.Fatalf("expected live stdout to also receive output, got %q", stdout.String())
	}

	stdout.Reset()
	result2, err := engine.Run(context.Background(), Request{
		Script:       "build",
		PackageDir:   turbopath.AbsoluteSystemPath(dir),
		ManifestPath: manifestPath,
		Stdout:       &stdout,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result2.Source != SourceLocalCache {
		t.Fatalf("expected second run to hit local cache, got source %s", result2.Source)
	}
	if stdout.String() != "hello-world\n" {
		t.Fatalf("expected replay to reproduce stdout byte-identically, got %q", stdout.String())
	}
	if result2.Key != result.Key {
		t.Fatalf("expected idempotent fingerprinting to produce the same cache key, got %s vs %s", result.Key, result2.Key)
	}
}

func TestRunCapturesNonZeroExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("spawns a POSIX shell")
	}
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir, map[string]string{"fail": "exit 3"})
	engine := openTestEngine(t)

	result, err := engine.Run(context.Background(), Request{
		Script:       "fail",
		PackageDir:   turbopath.AbsoluteSystemPath(dir),
		ManifestPath: manifestPath,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Output.ExitCode != 3 {
		t.Fatalf("expected captured exit code 3, got %d", result.Output.ExitCode)
	}
}

func TestRunWithDisabledRemoteMissesSilently(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("spawns a POSIX shell")
	}
	dir := t.TempDir()
	manifestPath := writeTestManifest(t, dir, map[string]string{"build": "echo hi"})
	engine := openTestEngine(t)
	remote, err := runcache.NewRemote(runcache.RemoteConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatal(err)
	}
	engine.Remote = remote

	result, err := engine.Run(context.Background(), Request{
		Script:       "build",
		PackageDir:   turbopath.AbsoluteSystemPath(dir),
		ManifestPath: manifestPath,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Source != SourceExecuted {
		t.Fatalf("expected a disabled remote cache to miss and fall through to execution, got %s", result.Source)
	}
}

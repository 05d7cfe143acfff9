package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsCreateAndModify(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	path := filepath.Join(root, "new.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := pollUntil(t, w, 2*time.Second)
	var sawCreate bool
	for _, c := range changes {
		if c.Path == path && (c.Kind == Create || c.Kind == Modify) {
			sawCreate = true
		}
	}
	if !sawCreate {
		t.Fatalf("expected a Create or Modify event for %s, got %+v", path, changes)
	}
}

func TestWatcherIgnoresConfiguredSubstrings(t *testing.T) {
	root := t.TempDir()
	ignoredDir := filepath.Join(root, "node_modules")
	if err := os.Mkdir(ignoredDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	path := filepath.Join(ignoredDir, "dep.js")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := pollUntil(t, w, 500*time.Millisecond)
	for _, c := range changes {
		if c.Path == path {
			t.Fatalf("expected %s under node_modules to be ignored, got it in %+v", path, changes)
		}
	}
}

func TestWatcherClassifiesDelete(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doomed.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	changes := pollUntil(t, w, 2*time.Second)
	var sawDelete bool
	for _, c := range changes {
		if c.Path == path && c.Kind == Delete {
			sawDelete = true
		}
	}
	if !sawDelete {
		t.Fatalf("expected a Delete event for %s, got %+v", path, changes)
	}
}

// pollUntil repeatedly calls Poll until it observes at least one event or
// deadline elapses, since fsnotify delivery is asynchronous with respect to
// the write call that triggered it.
func pollUntil(t *testing.T, w *Watcher, timeout time.Duration) []FileChange {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var all []FileChange
	for time.Now().Before(deadline) {
		all = append(all, w.Poll()...)
		if len(all) > 0 {
			time.Sleep(20 * time.Millisecond)
			all = append(all, w.Poll()...)
			return all
		}
		time.Sleep(20 * time.Millisecond)
	}
	return all
}

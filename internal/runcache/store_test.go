package runcache

import (
	"path/filepath"
	"testing"

	"github.com/neex-build/neex/internal/turbopath"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := turbopath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "cache", "store.db"))
	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreGetMissReturnsFalse(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Get("build:abc123")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected miss on an empty store")
	}
}

func TestStorePutThenGetRoundTrips(t *testing.T) {
	store := openTestStore(t)
	want := TaskOutput{
		Stdout:      []string{"line one", "line two"},
		Stderr:      nil,
		ExitCode:    0,
		DurationMS:  42,
		Fingerprint: "deadbeefdeadbeefdeadbeefdeadbeef",
	}
	if err := store.Put("build:deadbeefdeadbeef", want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.Get("build:deadbeefdeadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a hit after put")
	}
	if len(got.Stdout) != 2 || got.Stdout[0] != "line one" {
		t.Fatalf("expected stdout to round-trip byte-identical, got %+v", got.Stdout)
	}
	if got.ExitCode != 0 || got.DurationMS != 42 {
		t.Fatalf("expected metadata to round-trip, got %+v", got)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	store := openTestStore(t)
	_ = store.Put("k", TaskOutput{ExitCode: 1})
	_ = store.Put("k", TaskOutput{ExitCode: 0})

	got, _, err := store.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if got.ExitCode != 0 {
		t.Fatalf("expected overwrite to win, got exit code %d", got.ExitCode)
	}
}

func TestStoreClearRemovesAllEntries(t *testing.T) {
	store := openTestStore(t)
	_ = store.Put("a", TaskOutput{})
	_ = store.Put("b", TaskOutput{})

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 0 {
		t.Fatalf("expected empty store after clear, got size %d", size)
	}
}

func TestStoreSizeCountsEntries(t *testing.T) {
	store := openTestStore(t)
	_ = store.Put("a", TaskOutput{})
	_ = store.Put("b", TaskOutput{})
	_ = store.Put("b", TaskOutput{}) // overwrite, not a new entry

	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 2 {
		t.Fatalf("expected 2 entries, got %d", size)
	}
}

func TestKeyTruncatesFingerprint(t *testing.T) {
	key := Key("build", "0123456789abcdef0123456789abcdef", DefaultKeyChars)
	if key != "build:0123456789abcdef" {
		t.Fatalf("expected truncated 16-char key, got %s", key)
	}
}

func TestKeyWidensBeyondDefault(t *testing.T) {
	fp := "0123456789abcdef0123456789abcdef"
	key := Key("build", fp, 32)
	if key != "build:"+fp {
		t.Fatalf("expected full fingerprint when N exceeds default, got %s", key)
	}
}

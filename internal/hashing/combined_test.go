package hashing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neex-build/neex/internal/turbopath"
)

func TestHashFileCombinedIsCommentInvariantForJS(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.ts")
	pathB := filepath.Join(dir, "b.ts")
	if err := os.WriteFile(pathA, []byte("const a = 1;"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte("const a = 1; // comment"), 0644); err != nil {
		t.Fatal(err)
	}

	fhA, err := HashFileCombined(turbopath.AbsoluteSystemPath(pathA))
	if err != nil {
		t.Fatal(err)
	}
	fhB, err := HashFileCombined(turbopath.AbsoluteSystemPath(pathB))
	if err != nil {
		t.Fatal(err)
	}
	if fhA.Digest != fhB.Digest {
		t.Fatalf("expected comment-only edit to leave combined digest unchanged, got %s vs %s", fhA.Digest, fhB.Digest)
	}
}

func TestHashFileCombinedUsesRawHashForNonJS(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(pathA, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte("hello!"), 0644); err != nil {
		t.Fatal(err)
	}

	fhA, err := HashFileCombined(turbopath.AbsoluteSystemPath(pathA))
	if err != nil {
		t.Fatal(err)
	}
	fhB, err := HashFileCombined(turbopath.AbsoluteSystemPath(pathB))
	if err != nil {
		t.Fatal(err)
	}
	if fhA.Digest == fhB.Digest {
		t.Fatalf("expected raw hash to differ for different plain-text content")
	}
}

package turbopath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbsoluteSystemPathJoin(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo"))
	joined := root.Join(RelativeSystemPath("packages"), RelativeSystemPath("web"))
	require.Equal(t, filepath.FromSlash("/repo/packages/web"), joined.ToString())
}

func TestAbsoluteSystemPathUntypedJoin(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo"))
	joined := root.UntypedJoin("packages", "web", "package.json")
	require.Equal(t, filepath.FromSlash("/repo/packages/web/package.json"), joined.ToString())
}

func TestAbsoluteSystemPathDirAndBase(t *testing.T) {
	p := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo/packages/web/package.json"))
	require.Equal(t, filepath.FromSlash("/repo/packages/web"), p.Dir().ToString())
	require.Equal(t, "package.json", p.Base())
}

func TestAbsoluteSystemPathRelativeTo(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo"))
	child := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo/packages/web"))

	anchored, err := child.RelativeTo(root)
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("packages/web"), anchored.ToString())
}

func TestAbsoluteSystemPathMkdirAll(t *testing.T) {
	dir := AbsoluteSystemPathFromUpstream(t.TempDir())
	nested := dir.UntypedJoin("one", "two", "three")

	require.NoError(t, nested.MkdirAll(0777))

	info, err := os.Stat(nested.ToString())
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestAnchoredSystemPathRestoreAnchorAndRelativeTo(t *testing.T) {
	root := AbsoluteSystemPathFromUpstream(filepath.FromSlash("/repo"))
	anchored := AnchoredSystemPathFromUpstream(filepath.FromSlash("packages/web"))

	restored := anchored.RestoreAnchor(root)
	require.Equal(t, filepath.FromSlash("/repo/packages/web"), restored.ToString())

	other := AnchoredSystemPathFromUpstream(filepath.FromSlash("packages/web/dist"))
	relative, err := other.RelativeTo(anchored)
	require.NoError(t, err)
	require.Equal(t, "dist", relative.ToString())
}

func TestFindupFrom(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "marker.json"), []byte("{}"), 0666))

	found, err := FindupFrom("marker.json", filepath.Join(root, "a", "b", "c"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "a", "marker.json"), found)
}

func TestFindupFromNotFound(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0777))

	found, err := FindupFrom("nonexistent.json", filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	require.Equal(t, "", found)
}

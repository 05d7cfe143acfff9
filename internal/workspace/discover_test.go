package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/neex-build/neex/internal/turbopath"
)

func writeManifest(t *testing.T, dir, name string, m map[string]interface{}) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func buildFixture(t *testing.T) turbopath.AbsoluteSystemPath {
	t.Helper()
	tmp := t.TempDir()
	root := turbopath.AbsoluteSystemPath(tmp)

	writeManifest(t, tmp, ManifestFilename, map[string]interface{}{
		"name":       "monorepo-root",
		"workspaces": []string{"packages/*"},
	})
	writeManifest(t, filepath.Join(tmp, "packages", "utils"), ManifestFilename, map[string]interface{}{
		"name": "utils",
	})
	writeManifest(t, filepath.Join(tmp, "packages", "ui"), ManifestFilename, map[string]interface{}{
		"name":         "ui",
		"dependencies": map[string]string{"utils": "*"},
	})
	writeManifest(t, filepath.Join(tmp, "packages", "web"), ManifestFilename, map[string]interface{}{
		"name":         "web",
		"scripts":      map[string]string{"build": "tsc"},
		"dependencies": map[string]string{"ui": "*", "utils": "*"},
	})
	return root
}

func TestDiscoverFindsAllWorkspaceMembers(t *testing.T) {
	root := buildFixture(t)
	catalog, err := Discover(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"utils", "ui", "web"} {
		if _, ok := catalog.Nodes[name]; !ok {
			t.Errorf("expected workspace member %s to be discovered", name)
		}
	}
	if _, ok := catalog.Nodes["monorepo-root"]; !ok {
		t.Errorf("expected named root manifest to register itself")
	}
}

func TestDiscoverSkipsUnnamedCandidates(t *testing.T) {
	tmp := t.TempDir()
	root := turbopath.AbsoluteSystemPath(tmp)
	writeManifest(t, tmp, ManifestFilename, map[string]interface{}{
		"workspaces": []string{"packages/*"},
	})
	writeManifest(t, filepath.Join(tmp, "packages", "nameless"), ManifestFilename, map[string]interface{}{})

	catalog, err := Discover(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog.Nodes) != 0 {
		t.Fatalf("expected unnamed candidate to be skipped, got %+v", catalog.Nodes)
	}
}

func TestManifestByNameRoundTrips(t *testing.T) {
	root := buildFixture(t)
	catalog, err := Discover(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	m, err := catalog.manifestByName("web")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "web" {
		t.Fatalf("expected web manifest, got %+v", m)
	}
	if _, ok := m.Dependencies["ui"]; !ok {
		t.Fatalf("expected web to depend on ui, got %+v", m.Dependencies)
	}
}

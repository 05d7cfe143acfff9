package workspace

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/neex-build/neex/internal/turbopath"
)

// ManifestFilename is the per-package manifest file name workspace discovery
// looks for, the same filename the root manifest also uses.
const ManifestFilename = "package.json"

// ReadManifest loads and parses a manifest file.
func ReadManifest(path turbopath.AbsoluteSystemPath) (*Manifest, error) {
	raw, err := os.ReadFile(path.ToString())
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// workspacePatterns normalizes the `workspaces` field into a flat list of
// glob patterns, accepting both the bare-array and {packages: [...]} forms.
func workspacePatterns(m *Manifest) []string {
	switch v := m.Workspaces.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]interface{}:
		raw, ok := v["packages"]
		if !ok {
			return nil
		}
		items, ok := raw.([]interface{})
		if !ok {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

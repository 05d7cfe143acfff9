// Package workspace implements workspace discovery and the dependency DAG
// over discovered packages: cycle detection, topological build order, and
// affected-set computation.
package workspace

import "github.com/neex-build/neex/internal/turbopath"

// Node is a discovered package, created once per discovery and mutated only
// by a full re-discovery.
type Node struct {
	Name         string
	Dir          turbopath.AnchoredSystemPath
	ManifestPath turbopath.AnchoredSystemPath
	Version      string
	Scripts      map[string]string
}

// Manifest is the subset of a package.json this system cares about: its
// name, version, declared scripts, and the union of its runtime, dev, and
// peer dependency maps, unioned for edge purposes.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	Workspaces      interface{}       `json:"workspaces"`
}

// AllDependencyNames returns the union of every dependency map's keys.
func (m *Manifest) AllDependencyNames() []string {
	seen := map[string]struct{}{}
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies, m.PeerDependencies} {
		for name := range deps {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out
}

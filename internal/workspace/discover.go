package workspace

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/neex-build/neex/internal/turbopath"
)

// Catalog is the result of a discovery pass: every workspace node found,
// keyed by name.
type Catalog struct {
	Root  turbopath.AbsoluteSystemPath
	Nodes map[string]*Node
}

// Discover reads the root manifest's workspace-patterns field, globs each
// pattern against the filesystem, and loads a Node for every directory
// match that itself contains a manifest. A candidate with no `name` is a
// hard failure for that candidate only — it is logged and skipped.
func Discover(root turbopath.AbsoluteSystemPath, logger hclog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	fs := afero.NewOsFs()

	rootManifestPath := root.UntypedJoin(ManifestFilename)
	rootManifest, err := ReadManifest(rootManifestPath)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Root: root, Nodes: map[string]*Node{}}
	patterns := workspacePatterns(rootManifest)

	seen := map[string]struct{}{}
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(root.ToString()), filepath.ToSlash(pattern))
		if err != nil {
			logger.Warn("skipping unparsable workspace pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}

			candidateDir := root.UntypedJoin(match)
			isDir, err := afero.IsDir(fs, candidateDir.ToString())
			if err != nil || !isDir {
				continue
			}
			manifestPath := candidateDir.UntypedJoin(ManifestFilename)
			exists, err := afero.Exists(fs, manifestPath.ToString())
			if err != nil || !exists {
				continue
			}

			manifest, err := ReadManifest(manifestPath)
			if err != nil {
				logger.Warn("skipping candidate with unreadable manifest", "dir", candidateDir, "error", err)
				continue
			}
			if manifest.Name == "" {
				logger.Warn("skipping candidate with no name in manifest", "dir", candidateDir)
				continue
			}

			rel, err := candidateDir.RelativeTo(root)
			if err != nil {
				continue
			}
			manifestRel, err := manifestPath.RelativeTo(root)
			if err != nil {
				continue
			}

			catalog.Nodes[manifest.Name] = &Node{
				Name:         manifest.Name,
				Dir:          rel,
				ManifestPath: manifestRel,
				Version:      manifest.Version,
				Scripts:      manifest.Scripts,
			}
		}
	}

	if rootManifest.Name != "" {
		if _, exists := catalog.Nodes[rootManifest.Name]; !exists {
			catalog.Nodes[rootManifest.Name] = &Node{
				Name:         rootManifest.Name,
				Dir:          turbopath.AnchoredSystemPathFromUpstream("."),
				ManifestPath: turbopath.AnchoredSystemPathFromUpstream(ManifestFilename),
				Version:      rootManifest.Version,
				Scripts:      rootManifest.Scripts,
			}
		}
	}

	return catalog, nil
}

// manifestByName reloads a node's manifest (used by edge construction, which
// needs the full dependency maps, not just the Node summary).
func (c *Catalog) manifestByName(name string) (*Manifest, error) {
	node, ok := c.Nodes[name]
	if !ok {
		return nil, nil
	}
	return ReadManifest(node.ManifestPath.RestoreAnchor(c.Root))
}

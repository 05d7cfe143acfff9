package hashing

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/neex-build/neex/internal/turbopath"
)

// HashFileCombined computes a file's digest the way the global fingerprint
// wants it: the AST-structural hash for JS/TS-family extensions, so that
// comment and whitespace edits don't perturb the fingerprint, and the raw
// BLAKE3 digest for everything else.
func HashFileCombined(path turbopath.AbsoluteSystemPath) (FileHash, error) {
	raw, err := os.ReadFile(path.ToString())
	if err != nil {
		return FileHash{}, errors.Wrapf(err, "reading %s", path)
	}

	ext := filepath.Ext(path.ToString())
	var digest string
	if IsSyntaxHashable(ext) {
		digest = SyntaxHash(ext, raw)
	} else {
		digest = rawBytesHash(raw)
	}
	return FileHash{Path: path, Digest: digest, Size: int64(len(raw))}, nil
}

// WalkAndHashCombined is WalkAndHash, but every file's digest is computed
// by HashFileCombined instead of a plain raw hash — this is the walk the
// Task Runner uses to build a package's global fingerprint.
func WalkAndHashCombined(opts WalkOptions, logger hclog.Logger) ([]FileHash, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	matcher, err := loadIgnoreMatcher(opts.Root)
	if err != nil {
		return nil, err
	}

	var candidates []string
	walkErr := filepath.WalkDir(opts.Root.ToString(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(opts.Root.ToString(), path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if isIgnoredDir(rel) || matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(walkErr, "walking repository tree")
	}

	results := make([]FileHash, len(candidates))
	valid := make([]bool, len(candidates))

	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}

	var mu sync.Mutex
	var wg errgroup.Group
	sem := make(chan struct{}, workers)
	for i, path := range candidates {
		i, path := i, path
		sem <- struct{}{}
		wg.Go(func() error {
			defer func() { <-sem }()
			fh, err := HashFileCombined(turbopath.AbsoluteSystemPathFromUpstream(path))
			if err != nil {
				mu.Lock()
				logger.Warn("omitting unreadable file from fingerprint", "path", path, "error", err)
				mu.Unlock()
				return nil
			}
			results[i] = fh
			valid[i] = true
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	out := make([]FileHash, 0, len(results))
	for i, ok := range valid {
		if ok {
			out = append(out, results[i])
		}
	}
	return out, nil
}

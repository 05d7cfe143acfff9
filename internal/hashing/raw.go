// Package hashing implements the content-hashing layer: a parallel raw
// BLAKE3 file hasher combined into a deterministic global fingerprint,
// and an AST-aware syntax hasher for JS/TS sources.
package hashing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/neex-build/neex/internal/turbopath"
)

// defaultIgnores are directory names that are never walked, on top
// of whatever the repository's own VCS-ignore file excludes.
var defaultIgnores = []string{".git", "node_modules", ".neex"}

// FileHash is a single file's digest as described in the data model: an
// absolute path, its hex digest, and its byte length. It is never mutated
// after creation.
type FileHash struct {
	Path   turbopath.AbsoluteSystemPath
	Digest string
	Size   int64
}

// WalkOptions configures the raw hasher's file-tree walk.
type WalkOptions struct {
	// Root is the directory to walk.
	Root turbopath.AbsoluteSystemPath
	// Workers bounds the number of goroutines hashing files concurrently.
	// Zero or less means 8.
	Workers int
}

// HashFile reads path whole and returns its BLAKE3 digest, hex-encoded.
func HashFile(path turbopath.AbsoluteSystemPath) (FileHash, error) {
	bytes, err := os.ReadFile(path.ToString())
	if err != nil {
		return FileHash{}, errors.Wrapf(err, "reading %s", path)
	}
	sum := blake3.Sum256(bytes)
	return FileHash{
		Path:   path,
		Digest: hexEncode(sum[:]),
		Size:   int64(len(bytes)),
	}, nil
}

// WalkAndHash walks root honoring VCS-ignore semantics (a .gitignore at the
// root, if present, plus the builtin defaultIgnores directory names), hashing
// every regular file it finds in parallel. A file that fails to read is
// omitted with a warning logged through logger rather than failing the
// whole walk — an omission is itself a legitimate change.
func WalkAndHash(opts WalkOptions, logger hclog.Logger) ([]FileHash, error) {
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
			fh, err := HashFile(turbopath.AbsoluteSystemPathFromUpstream(path))
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

// GlobalFingerprint computes the deterministic global fingerprint over a set
// of FileHash entries: sort by path, feed each digest into a fresh hasher in
// order, output hex. No separators are required because BLAKE3 digests have
// fixed length.
func GlobalFingerprint(files []FileHash) string {
	sorted := make([]FileHash, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path.ToString() < sorted[j].Path.ToString()
	})

	h := blake3.New(32, nil)
	for _, f := range sorted {
		raw, err := hexDecode(f.Digest)
		if err != nil {
			continue
		}
		_, _ = h.Write(raw)
	}
	return hexEncode(h.Sum(nil))
}

func isIgnoredDir(rel string) bool {
	parts := strings.Split(rel, string(filepath.Separator))
	name := parts[len(parts)-1]
	for _, ignore := range defaultIgnores {
		if name == ignore {
			return true
		}
	}
	return false
}

// nullMatcher never matches, used when a repo carries no .gitignore.
type nullMatcher struct{}

func (nullMatcher) MatchesPath(string) bool { return false }

type pathMatcher interface {
	MatchesPath(string) bool
}

func loadIgnoreMatcher(root turbopath.AbsoluteSystemPath) (pathMatcher, error) {
	ignoreFile := root.UntypedJoin(".gitignore")
	if _, err := os.Stat(ignoreFile.ToString()); err != nil {
		return nullMatcher{}, nil
	}
	compiled, err := gitignore.CompileIgnoreFile(ignoreFile.ToString())
	if err != nil {
		return nullMatcher{}, nil
	}
	return compiled, nil
}

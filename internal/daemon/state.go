// Package daemon implements the long-lived background process: an
// in-memory path→digest index kept current by a filesystem watcher,
// mirrored to an embedded store for crash recovery.
package daemon

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/neex-build/neex/internal/hashing"
	"github.com/neex-build/neex/internal/turbopath"
)

var bucketName = []byte("hashes")

// State holds the daemon's live view of every watched file's digest. Reads
// take the read lock; FullScan/UpdateFile/RemoveFile take the write lock.
type State struct {
	mu     sync.RWMutex
	hashes map[string]string // absolute path -> hex digest

	db     *bolt.DB
	logger hclog.Logger
}

// OpenState opens (creating if absent) the bbolt-backed mirror at path and
// loads its contents into memory, so state survives a daemon crash.
func OpenState(path turbopath.AbsoluteSystemPath, logger hclog.Logger) (*State, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := path.Dir().MkdirAll(0775); err != nil {
		return nil, errors.Wrap(err, "creating daemon state directory")
	}
	db, err := bolt.Open(path.ToString(), 0644, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening daemon state db")
	}
	hashes := make(map[string]string)
	err = db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			hashes[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "loading daemon state db")
	}
	return &State{hashes: hashes, db: db, logger: logger}, nil
}

// FullScan walks root with the raw hasher and atomically replaces both the
// in-memory map and the persistent mirror in a single batch.
func (s *State) FullScan(root turbopath.AbsoluteSystemPath) error {
	files, err := hashing.WalkAndHash(hashing.WalkOptions{Root: root}, s.logger)
	if err != nil {
		return errors.Wrap(err, "full scan")
	}

	fresh := make(map[string]string, len(files))
	for _, f := range files {
		fresh[f.Path.ToString()] = f.Digest
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		bucket, err := tx.CreateBucket(bucketName)
		if err != nil {
			return err
		}
		for path, digest := range fresh {
			if err := bucket.Put([]byte(path), []byte(digest)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "persisting full scan")
	}

	s.mu.Lock()
	s.hashes = fresh
	s.mu.Unlock()
	return nil
}

// UpdateFile rehashes a single path and updates both stores. A read error
// (the file no longer exists, say) is treated as a removal, matching
// WalkAndHash's "an omission is itself a legitimate change" policy.
func (s *State) UpdateFile(path turbopath.AbsoluteSystemPath) error {
	fh, err := hashing.HashFile(path)
	if err != nil {
		return s.RemoveFile(path)
	}

	key := path.ToString()
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(fh.Digest))
	}); err != nil {
		return errors.Wrapf(err, "persisting hash for %s", key)
	}

	s.mu.Lock()
	s.hashes[key] = fh.Digest
	s.mu.Unlock()
	return nil
}

// RemoveFile drops path from both stores. Removing an absent path is not
// an error.
func (s *State) RemoveFile(path turbopath.AbsoluteSystemPath) error {
	key := path.ToString()
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	}); err != nil {
		return errors.Wrapf(err, "removing hash for %s", key)
	}

	s.mu.Lock()
	delete(s.hashes, key)
	s.mu.Unlock()
	return nil
}

// GetHash returns the current digest for path, if known.
func (s *State) GetHash(path turbopath.AbsoluteSystemPath) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	digest, ok := s.hashes[path.ToString()]
	return digest, ok
}

// GetChanged returns every path whose current digest differs from old, or
// is absent from old entirely. Paths present in old but no longer tracked
// (deleted since) are also reported changed.
func (s *State) GetChanged(old map[string]string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	changed := make([]string, 0)
	for path, digest := range s.hashes {
		if oldDigest, ok := old[path]; !ok || oldDigest != digest {
			changed = append(changed, path)
		}
	}
	for path := range old {
		if _, ok := s.hashes[path]; !ok {
			changed = append(changed, path)
		}
	}
	return changed
}

// Snapshot returns a defensive copy of the live hash map, suitable for use
// as a later GetChanged baseline or for Stats reporting.
func (s *State) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.hashes))
	for k, v := range s.hashes {
		out[k] = v
	}
	return out
}

// Count reports the number of currently tracked files, for the IPC Stats
// response's CachedFiles field.
func (s *State) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}

// DBSize reports the on-disk size in bytes of the persistent mirror, for
// the IPC Stats response's DBSize field.
func (s *State) DBSize() int64 {
	info, err := os.Stat(s.db.Path())
	if err != nil {
		return 0
	}
	return info.Size()
}

// Close releases the underlying file handle.
func (s *State) Close() error {
	return s.db.Close()
}

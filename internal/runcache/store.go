package runcache

import (
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/neex-build/neex/internal/turbopath"
)

var bucketName = []byte("cache")

// Store is the embedded ordered key/value result cache (L1), backed by
// bbolt. Concurrent readers are safe per bbolt's MVCC transactions; writes
// serialize on the single writer bbolt allows. Every Put commits its
// transaction (and therefore flushes) before returning.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if absent) the bbolt-backed result cache at
// path, conventionally under `.neex/cache/`.
func OpenStore(path turbopath.AbsoluteSystemPath) (*Store, error) {
	if err := path.Dir().MkdirAll(0775); err != nil {
		return nil, errors.Wrap(err, "creating result cache directory")
	}
	db, err := bolt.Open(path.ToString(), 0644, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening result cache")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initializing result cache bucket")
	}
	return &Store{db: db}, nil
}

// Get returns the TaskOutput stored under key, or ok=false on a miss.
func (s *Store) Get(key string) (TaskOutput, bool, error) {
	var out TaskOutput
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return TaskOutput{}, false, errors.Wrapf(err, "reading cache key %s", key)
	}
	return out, found, nil
}

// Put stores (overwriting any existing entry) the TaskOutput under key.
// The call does not return until the write is committed to disk.
func (s *Store) Put(key string, output TaskOutput) error {
	raw, err := json.Marshal(output)
	if err != nil {
		return errors.Wrap(err, "marshaling task output")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
	return errors.Wrapf(err, "writing cache key %s", key)
}

// Clear removes every entry from the cache.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// Size reports the number of entries currently stored.
func (s *Store) Size() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return count, err
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package cachekey provides a short, non-cryptographic display form for
// cache keys — for logs and terminal output, never for content integrity
// (runcache.Key and the hashing package own that).
package cachekey

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ShortDigest returns an 8-hex-char summary of key, stable for a given
// key but unsuitable for cache correctness: collisions are expected at
// this width and are fine for a log line.
func ShortDigest(key string) string {
	sum := xxhash.Sum64String(key)
	return fmt.Sprintf("%08x", uint32(sum))
}

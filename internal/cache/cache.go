package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from its parts
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "truthguard:v1:" + hex.EncodeToString(hash[:])
}

// Remember returns the cached value for key, or calls load and caches its
// result for ttl. Errors from load are not cached. The bool reports a hit.
func Remember(c Cache, key string, ttl time.Duration, load func() ([]byte, error)) ([]byte, bool, error) {
	if val, ok := c.Get(key); ok {
		return val, true, nil
	}

	val, err := load()
	if err != nil {
		return nil, false, err
	}

	if err := c.Set(key, val, ttl); err != nil {
		return val, false, err
	}
	return val, false, nil
}

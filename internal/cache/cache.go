// Package cache keeps fetched report bodies so a repeated run against the
// same URL can skip the download.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a report URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "arrests:v1:" + hex.EncodeToString(hash[:])
}

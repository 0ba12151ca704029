package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw tile responses between runs
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from an endpoint and query
func CacheKey(endpoint, query string) string {
	hash := sha256.Sum256([]byte(endpoint + "\n" + query))
	return "ladepause:v1:" + hex.EncodeToString(hash[:])
}

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// Cache memoizes raw model responses for the lifetime of one run, so that
// repeated chunks (identical prompts) are generated once. Nothing is
// written to disk.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	enabled bool
	hits    int
	misses  int
}

// New creates a new Cache. A disabled cache never hits and stores nothing.
func New(enabled bool) *Cache {
	return &Cache{enabled: enabled, entries: make(map[string]string)}
}

// Get retrieves a cached response by key. Returns ("", false) on miss.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || !c.enabled {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return resp, ok
}

// Put stores a response in the cache.
func (c *Cache) Put(key, response string) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	c.entries[key] = response
	c.mu.Unlock()
}

// Clear removes all entries and resets counters.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// Stats describes cache usage.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from the generation inputs. Every
// parameter that changes the model output is part of the key.
func BuildCacheKey(backend, model, prompt string, maxTokens int, temperature, repeatPenalty float64, stop []string) string {
	return HashKey(fmt.Sprintf("%s\x00%s\x00%d\x00%g\x00%g\x00%s\x00%s",
		backend, model, maxTokens, temperature, repeatPenalty, strings.Join(stop, "\x1f"), prompt))
}

package boe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache stores downloaded pages as JSON files named by the SHA-256 of
// their URL.
type DiskCache struct {
	dir string
	ttl time.Duration
}

type cacheEntry struct {
	Document  Document  `json:"document"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &DiskCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached page for url if present and fresh. Expired entries
// are removed.
func (c *DiskCache) Get(url string) (Document, bool) {
	path := c.pathFor(url)

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Document{}, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return Document{}, false
	}

	entry.Document.Cached = true
	return entry.Document, true
}

// Set stores doc under url.
func (c *DiskCache) Set(url string, doc Document) error {
	doc.Cached = false
	data, err := json.Marshal(cacheEntry{Document: doc, ExpiresAt: time.Now().Add(c.ttl)})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	// Readers never observe a partially written entry.
	path := c.pathFor(url)
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file in %s: %w", c.dir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit cache file %s: %w", path, err)
	}
	return nil
}

func (c *DiskCache) pathFor(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Package cache persists generated viewer scripts on disk, one file per
// cache key. The store is unbounded and never evicts; deleting the
// directory is a full reset.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is the narrow interface the pipeline depends on. A bounded or
// TTL-based store can replace DiskCache without touching the pipeline.
type Cache interface {
	// Lookup reads the entry for a key; a miss is not an error
	Lookup(key string) (*Entry, bool, error)

	// Store writes or overwrites the entry unconditionally
	Store(key, script string) error

	// Path returns the on-disk location for a key
	Path(key string) string
}

// Entry is one cached viewer script
type Entry struct {
	Key     string
	Script  string
	Created time.Time
}

// DiskCache stores entries as .py files under a single directory
type DiskCache struct {
	dir string
}

// NewDiskCache creates a cache rooted at dir
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

// Key derives the deterministic cache key for one generation request.
// Identical (dataset, split, summary, extra prompt) tuples always map to
// the same key.
func Key(dataset, split, summary, extraPrompt string) string {
	keyData := struct {
		Dataset     string `json:"dataset"`
		Split       string `json:"split"`
		Summary     string `json:"summary"`
		ExtraPrompt string `json:"extra_prompt"`
	}{
		Dataset:     dataset,
		Split:       split,
		Summary:     summary,
		ExtraPrompt: extraPrompt,
	}

	data, err := json.Marshal(keyData)
	if err != nil {
		// Marshaling flat strings cannot fail; keep a readable fallback anyway
		data = []byte(dataset + "/" + split)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Lookup reads the entry for a key
func (c *DiskCache) Lookup(key string) (*Entry, bool, error) {
	path := c.Path(key)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	script, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return &Entry{
		Key:     key,
		Script:  string(script),
		Created: info.ModTime(),
	}, true, nil
}

// Store writes or overwrites the entry for a key. Writes are whole-file
// replacements; concurrent writers race benignly, last write wins.
func (c *DiskCache) Store(key, script string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := os.WriteFile(c.Path(key), []byte(script), 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Path returns the on-disk location for a key
func (c *DiskCache) Path(key string) string {
	return filepath.Join(c.dir, key+".py")
}

// Dir returns the cache root directory
func (c *DiskCache) Dir() string {
	return c.dir
}

// List returns all cached entries without their script contents
func (c *DiskCache) List() ([]Entry, error) {
	files, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".py" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:     f.Name()[:len(f.Name())-len(".py")],
			Created: info.ModTime(),
		})
	}

	return entries, nil
}

// Clear removes every cached entry
func (c *DiskCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

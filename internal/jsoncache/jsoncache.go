// Package jsoncache persists the scan caches as versioned JSON files.
//
// Each cache is a flat JSON object holding a reserved "_v" version key
// beside the entry keys. A file whose version does not match the
// current cache version is discarded wholesale, so stale formats never
// leak into a scan. Reads of missing or corrupt files yield an empty
// cache rather than an error.
package jsoncache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// versionKey is the reserved key carrying the cache format version.
// Entry keys are commit hashes, which never start with an underscore.
const versionKey = "_v"

// spotCheckLimit bounds how many entries a load validates beyond the
// type decode. Full validation of large caches would dominate startup.
const spotCheckLimit = 5

// Cache is an in-memory view of one versioned JSON cache file.
// It is safe for concurrent use.
type Cache[T any] struct {
	mu      sync.RWMutex
	path    string
	version int
	entries map[string]T
}

// Load reads a cache file into memory. A missing file, a corrupt file,
// or a version mismatch all produce an empty cache; only corruption is
// worth a warning. An optional validator spot-checks a bounded sample
// of entries, dropping the ones it rejects.
func Load[T any](path string, version int, validate ...func(T) bool) *Cache[T] {
	c := &Cache[T]{
		path:    path,
		version: version,
		entries: make(map[string]T),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		contract.LogWarn(fmt.Sprintf("discarding corrupt cache %s", filepath.Base(path)), err)
		return c
	}

	var fileVersion int
	if v, ok := raw[versionKey]; !ok || json.Unmarshal(v, &fileVersion) != nil || fileVersion != version {
		return c
	}

	for key, msg := range raw {
		if strings.HasPrefix(key, "_") {
			continue
		}
		var entry T
		if err := json.Unmarshal(msg, &entry); err != nil {
			continue
		}
		c.entries[key] = entry
	}

	if len(validate) > 0 && validate[0] != nil {
		c.spotCheck(validate[0])
	}
	return c
}

// spotCheck validates up to spotCheckLimit entries, chosen by sorted
// key so repeated loads inspect the same sample. Rejected entries are
// dropped one by one.
func (c *Cache[T]) spotCheck(valid func(T) bool) {
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > spotCheckLimit {
		keys = keys[:spotCheckLimit]
	}
	for _, key := range keys {
		if !valid(c.entries[key]) {
			contract.LogWarn(fmt.Sprintf("dropping malformed entry %s from %s", key, filepath.Base(c.path)), nil)
			delete(c.entries, key)
		}
	}
}

// Get returns the entry for a key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores an entry under a key.
func (c *Cache[T]) Put(key string, entry T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Path returns the backing file path.
func (c *Cache[T]) Path() string {
	return c.path
}

// Save writes the cache back to its file. The write goes through a
// temporary file in the same directory and a rename, so readers never
// observe a half-written cache.
func (c *Cache[T]) Save() error {
	c.mu.RLock()
	payload := make(map[string]any, len(c.entries)+1)
	payload[versionKey] = c.version
	for key, entry := range c.entries {
		payload[key] = entry
	}
	c.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling cache %s: %w", filepath.Base(c.path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging cache %s: %w", filepath.Base(c.path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache %s: %w", filepath.Base(c.path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing cache %s: %w", filepath.Base(c.path), err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache %s: %w", filepath.Base(c.path), err)
	}
	return nil
}

// Status reports the on-disk state of the cache file.
func (c *Cache[T]) Status() schema.CacheStatus {
	status := schema.CacheStatus{
		Name:    filepath.Base(c.path),
		Version: c.version,
		Entries: c.Len(),
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.SizeBytes = info.Size()
	status.ModifiedTime = info.ModTime().Format(schema.TimestampFormat)
	return status
}

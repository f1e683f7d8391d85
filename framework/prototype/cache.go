package prototype

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/btree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache persists ServicePrototype blueprints between processes so expensive
// reflection only runs once per class.
//
// Get returns ErrCacheMiss for absent and for unreadable entries — a corrupt
// entry degrades to "re-analyze", never to a hard failure. Has answers
// existence cheaply, without deserializing the entry.
type Cache interface {
	Get(class string) (*ServicePrototype, error)
	Set(class string, p *ServicePrototype) error
	Has(class string) bool
	Delete(class string) error
	Clear() error
	Count() int
	Classes() []string
}

// ── FileCache ─────────────────────────────────────────────────────────────────

// entryExt is the suffix of every cache entry file.
const entryExt = ".prototype.json"

// fileNameSanitizer makes class keys filesystem-safe.
var fileNameSanitizer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_")

// FileCache stores one JSON entry per class under Dir.
//
// Writes are atomic: the entry is serialized to a temporary file in the same
// directory, flushed, and renamed over the target path. A reader never
// observes a partially written entry; concurrent identical writes are
// idempotent (last rename wins).
type FileCache struct {
	dir string
}

// NewFileCache returns a cache rooted at dir. The directory is created on
// first write, not here.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) entryPath(class string) string {
	return filepath.Join(c.dir, fileNameSanitizer.Replace(class)+entryExt)
}

// Get loads the entry for class, or ErrCacheMiss when absent or unreadable.
func (c *FileCache) Get(class string) (*ServicePrototype, error) {
	data, err := os.ReadFile(c.entryPath(class))
	if err != nil {
		return nil, ErrCacheMiss
	}
	var proto ServicePrototype
	if err := json.Unmarshal(data, &proto); err != nil || proto.Class == "" {
		return nil, ErrCacheMiss
	}
	return &proto, nil
}

// Set serializes and atomically persists the prototype.
func (c *FileCache) Set(class string, p *ServicePrototype) error {
	target := c.entryPath(class)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &CacheWriteError{Path: target, Err: err}
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return &CacheWriteError{Path: target, Err: err}
	}

	tmp, err := os.CreateTemp(c.dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return &CacheWriteError{Path: target, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &CacheWriteError{Path: target, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &CacheWriteError{Path: target, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &CacheWriteError{Path: target, Err: err}
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return &CacheWriteError{Path: target, Err: err}
	}
	return nil
}

// Has reports entry existence via a stat, without reading the entry.
func (c *FileCache) Has(class string) bool {
	_, err := os.Stat(c.entryPath(class))
	return err == nil
}

// Delete removes the entry for class. Removing an absent entry is a no-op.
func (c *FileCache) Delete(class string) error {
	err := os.Remove(c.entryPath(class))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every cache entry, leaving unrelated files in place.
func (c *FileCache) Clear() error {
	for _, name := range c.entryFiles() {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Count returns the number of persisted entries.
func (c *FileCache) Count() int {
	return len(c.entryFiles())
}

// Classes returns the class keys of all persisted entries, sorted. Names are
// read from the entries themselves (the filename transform is lossy);
// corrupt entries are skipped.
func (c *FileCache) Classes() []string {
	var classes []string
	for _, name := range c.entryFiles() {
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			continue
		}
		if class := jsoniter.Get(data, "class").ToString(); class != "" {
			classes = append(classes, class)
		}
	}
	sort.Strings(classes)
	return classes
}

func (c *FileCache) entryFiles() []string {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), entryExt) {
			names = append(names, entry.Name())
		}
	}
	return names
}

// ── MemoryCache ───────────────────────────────────────────────────────────────

// MemoryCache holds prototypes in an ordered in-process map. It satisfies
// the same contract as FileCache, minus persistence.
type MemoryCache struct {
	mu      sync.RWMutex
	entries btree.Map[string, *ServicePrototype]
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get(class string) (*ServicePrototype, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.entries.Get(class); ok {
		return p, nil
	}
	return nil, ErrCacheMiss
}

func (c *MemoryCache) Set(class string, p *ServicePrototype) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Set(class, p)
	return nil
}

func (c *MemoryCache) Has(class string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries.Get(class)
	return ok
}

func (c *MemoryCache) Delete(class string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Delete(class)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = btree.Map[string, *ServicePrototype]{}
	return nil
}

func (c *MemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Len()
}

// Classes returns all cached class keys in ascending order.
func (c *MemoryCache) Classes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	classes := make([]string, 0, c.entries.Len())
	c.entries.Scan(func(class string, _ *ServicePrototype) bool {
		classes = append(classes, class)
		return true
	})
	return classes
}

// ── NoopCache ─────────────────────────────────────────────────────────────────

// NoopCache always misses and forgets writes. It is wired in when prototype
// persistence is disabled; callers stay agnostic to which cache is active.
type NoopCache struct{}

// NewNoopCache returns the no-op cache.
func NewNoopCache() *NoopCache { return &NoopCache{} }

func (*NoopCache) Get(string) (*ServicePrototype, error) { return nil, ErrCacheMiss }
func (*NoopCache) Set(string, *ServicePrototype) error   { return nil }
func (*NoopCache) Has(string) bool                       { return false }
func (*NoopCache) Delete(string) error                   { return nil }
func (*NoopCache) Clear() error                          { return nil }
func (*NoopCache) Count() int                            { return 0 }
func (*NoopCache) Classes() []string                     { return nil }

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded tables by source path. While the file's size and
// modification time are unchanged a hit costs one stat; otherwise the bytes
// are re-read and the entry is reused only if their content hash matches.
// Callers get the identical *Table back on every hit.
type Cache struct {
	opts LoadOptions

	mu      sync.RWMutex
	entries map[string]cacheEntry

	group singleflight.Group
	loads int
	reads int
}

type cacheEntry struct {
	size  int64
	mtime time.Time
	sum   uint64
	table *Table
}

// NewCache creates an empty cache that parses files with opts.
func NewCache(opts LoadOptions) *Cache {
	return &Cache{opts: opts, entries: make(map[string]cacheEntry)}
}

// Get returns the table for path, parsing the file only when it has not been
// seen or its content changed. Concurrent first requests share one parse.
func (c *Cache) Get(path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	c.mu.RLock()
	e, ok := c.entries[abs]
	c.mu.RUnlock()
	if ok && e.size == fi.Size() && e.mtime.Equal(fi.ModTime()) {
		return e.table, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	sum := xxh3.Hash(raw)
	stamp := cacheEntry{size: int64(len(raw)), mtime: fi.ModTime(), sum: sum}

	if ok && e.sum == sum {
		// touched but unchanged: refresh the stamp, keep the table
		stamp.table = e.table
		c.mu.Lock()
		c.entries[abs] = stamp
		c.mu.Unlock()
		return e.table, nil
	}

	key := abs + "@" + strconv.FormatUint(sum, 16)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[abs]
		c.mu.RUnlock()
		if ok && e.sum == sum {
			return e.table, nil
		}

		t, err := Parse(raw, c.opts)
		if err != nil {
			return nil, err
		}
		stamp.table = t
		c.mu.Lock()
		c.entries[abs] = stamp
		c.loads++
		c.mu.Unlock()
		log.Debugf("cached %s (xxh3 %016x)", abs, sum)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Loads reports how many times a file was actually parsed.
func (c *Cache) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

var (
	defaultMu    sync.Mutex
	defaultCache *Cache
)

// Default returns the process-wide cache, creating it with opts on first use.
// Later calls ignore opts.
func Default(opts LoadOptions) *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		defaultCache = NewCache(opts)
	}
	return defaultCache
}

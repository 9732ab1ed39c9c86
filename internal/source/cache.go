package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// StatFunc reports a file's modification time.
type StatFunc func(path string) (time.Time, error)

// LoadFunc parses a source file into a table and a count of dropped rows.
type LoadFunc[T any] func(path string) (T, int, error)

// OSStat is the StatFunc backed by the file system.
func OSStat(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Snapshot is one parsed table together with the modification time it was read at.
type Snapshot[T any] struct {
	Table   T
	Dropped int
	ModTime time.Time
}

// Cache memoizes the load of one source file keyed by its modification time.
// A changed modification time forces a full reload; an unchanged one returns
// the previous snapshot without touching the file contents.
type Cache[T any] struct {
	path string
	load LoadFunc[T]
	stat StatFunc

	mu    sync.Mutex
	entry *Snapshot[T]
}

// NewCache creates a cache for path. A nil stat uses OSStat.
func NewCache[T any](path string, load LoadFunc[T], stat StatFunc) *Cache[T] {
	if stat == nil {
		stat = OSStat
	}
	return &Cache[T]{path: path, load: load, stat: stat}
}

// Path returns the cached file's path.
func (c *Cache[T]) Path() string { return c.path }

// Get returns the current snapshot and whether it was served from the cache.
// A missing file clears the entry and returns ErrSourceMissing.
func (c *Cache[T]) Get() (Snapshot[T], bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mtime, err := c.stat(c.path)
	if err != nil {
		c.entry = nil
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot[T]{}, false, fmt.Errorf("%s: %w", c.path, ErrSourceMissing)
		}
		return Snapshot[T]{}, false, fmt.Errorf("stat %s: %w", c.path, err)
	}

	if c.entry != nil && c.entry.ModTime.Equal(mtime) {
		return *c.entry, true, nil
	}

	table, dropped, err := c.load(c.path)
	if err != nil {
		return Snapshot[T]{}, false, err
	}
	c.entry = &Snapshot[T]{Table: table, Dropped: dropped, ModTime: mtime}
	return *c.entry, false, nil
}

// Invalidate drops the cached entry so the next Get reloads.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

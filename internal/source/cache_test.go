package source

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	mtime time.Time
	err   error
}

func (f *fakeFile) stat(string) (time.Time, error) { return f.mtime, f.err }

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) load(path string) ([]string, int, error) {
	l.calls++
	if l.err != nil {
		return nil, 0, l.err
	}
	return []string{path}, 1, nil
}

func TestCache(t *testing.T) {
	file := &fakeFile{mtime: time.Unix(1000, 0)}
	loader := &countingLoader{}
	c := NewCache("data/events.csv", loader.load, file.stat)

	snap, hit, err := c.Get()
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"data/events.csv"}, snap.Table)
	assert.Equal(t, 1, snap.Dropped)
	assert.Equal(t, 1, loader.calls)

	t.Run("unchanged mtime is served from cache", func(t *testing.T) {
		_, hit, err := c.Get()
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, 1, loader.calls)
	})

	t.Run("changed mtime forces reload", func(t *testing.T) {
		file.mtime = time.Unix(2000, 0)
		snap, hit, err := c.Get()
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, time.Unix(2000, 0), snap.ModTime)
		assert.Equal(t, 2, loader.calls)
	})

	t.Run("invalidate forces reload", func(t *testing.T) {
		c.Invalidate()
		_, hit, err := c.Get()
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 3, loader.calls)
	})

	t.Run("missing file", func(t *testing.T) {
		file.err = fs.ErrNotExist
		_, _, err := c.Get()
		assert.ErrorIs(t, err, ErrSourceMissing)

		file.err = nil
		_, hit, err := c.Get()
		require.NoError(t, err)
		assert.False(t, hit, "entry is dropped while the file is missing")
		assert.Equal(t, 4, loader.calls)
	})
}

func TestCache_LoadErrorIsNotCached(t *testing.T) {
	file := &fakeFile{mtime: time.Unix(1000, 0)}
	loader := &countingLoader{err: errors.New("bad header")}
	c := NewCache("x.csv", loader.load, file.stat)

	_, _, err := c.Get()
	require.Error(t, err)

	loader.err = nil
	_, hit, err := c.Get()
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, loader.calls)
}

func TestCache_OSStat(t *testing.T) {
	path := writeFile(t, "routes.csv", "date,ars_id,route\n2025-08-15,01001,172\n")
	c := NewCache(path, LoadRoutes, nil)

	snap, _, err := c.Get()
	require.NoError(t, err)
	require.Len(t, snap.Table, 1)
	assert.Equal(t, "172", snap.Table[0].Route)
	assert.Equal(t, path, c.Path())
}

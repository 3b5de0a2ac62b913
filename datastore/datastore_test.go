package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*DataStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = time.Hour // keep the ticker out of the way
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds, path
}

func TestAddGetDelete(t *testing.T) {
	ds, _ := newStore(t)

	ds.Add("k", map[string]any{"v": float64(1)})
	got, ok := ds.Get("k")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"v": float64(1)}, got)

	ds.Delete("k")
	_, ok = ds.Get("k")
	assert.False(t, ok)
}

func TestDataSurvivesReload(t *testing.T) {
	ds, path := newStore(t)
	ds.Add("greeting", "hello")
	require.NoError(t, ds.SaveToFile())
	require.NoError(t, ds.Close())

	ds2, err := New(path)
	require.NoError(t, err)
	defer ds2.Close()

	got, ok := ds2.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestUnchangedDataIsNotRewritten(t *testing.T) {
	ds, path := newStore(t)
	ds.Add("k", "v")
	require.NoError(t, ds.SaveToFile())

	before, err := os.Stat(path)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ds.SaveToFile())

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "same checksum skips the write")
}

func TestBackupsAreCreatedAndBounded(t *testing.T) {
	ds, path := newStore(t)

	for i := 0; i < 6; i++ {
		ds.Add("counter", i)
		require.NoError(t, ds.SaveToFile())
		time.Sleep(5 * time.Millisecond)
	}

	matches, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), ds.config.BackupCount+1)
}

func TestConcurrentMutationsAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = time.Millisecond // keep the autosave goroutine busy
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", w)
			for i := 0; i < 50; i++ {
				ds.Add(key, i)
				assert.NoError(t, ds.SaveToFile())
			}
		}(w)
	}
	wg.Wait()

	got, ok := ds.Get("k0")
	require.True(t, ok)
	assert.Equal(t, 49, got)

	require.NoError(t, ds.Close())
	ds2, err := New(path)
	require.NoError(t, err)
	defer ds2.Close()
	v, ok := ds2.Get("k3")
	require.True(t, ok)
	assert.Equal(t, float64(49), v)
}

func TestCloseIsIdempotent(t *testing.T) {
	ds, _ := newStore(t)
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())

	ds.Add("k", "v")
	_, ok := ds.Get("k")
	assert.False(t, ok, "closed store ignores writes")
}

func TestRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}

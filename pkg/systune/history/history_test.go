package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	return store
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestStore_Record(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Record("6.8.0-45-generic", []OpRecord{
		{Name: "memory", Changed: 2},
		{Name: "network", Skipped: 2},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(entry.ID)
	assert.NoError(t, err)
	assert.Equal(t, "6.8.0-45-generic", entry.Kernel)
	assert.WithinDuration(t, time.Now(), entry.Timestamp, time.Minute)

	// Exactly one JSON file, no leftover temp file.
	files, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), entry.ID)
	assert.NotContains(t, files[0].Name(), ".tmp")
}

func TestStore_List_NewestFirst(t *testing.T) {
	store := newTestStore(t)

	for _, kernel := range []string{"first", "second", "third"} {
		_, err := store.Record(kernel, nil)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Kernel)
	assert.Equal(t, "first", entries[2].Kernel)
}

func TestStore_List_Limit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.Record("kernel", nil)
		require.NoError(t, err)
	}

	entries, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_List_MissingDir(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_List_SkipsMalformedFiles(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Record("kernel", nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "garbage.json"), []byte("{"), 0o644))

	entries, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Clean(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Record("recent", nil)
	require.NoError(t, err)

	// Age one entry past the retention cutoff.
	stale, err := store.Record("stale", nil)
	require.NoError(t, err)
	var stalePath string
	files, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	for _, f := range files {
		if strings.Contains(f.Name(), stale.ID) {
			stalePath = filepath.Join(store.dir, f.Name())
		}
	}
	require.NotEmpty(t, stalePath)
	old := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	removed, err := store.Clean(90)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].Kernel)
}

func TestStore_Clean_DisabledRetention(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Record("kernel", nil)
	require.NoError(t, err)

	removed, err := store.Clean(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_WriteAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "systune.log")
	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first line\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second line\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", string(data))
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "systune.log")
	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 20})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("0123456789\n"))
	require.NoError(t, err)
	// This write would exceed MaxSize, so the file rotates first.
	_, err = w.Write([]byte("abcdefghij\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var rotated []string
	for _, e := range entries {
		if e.Name() != "systune.log" && strings.HasPrefix(e.Name(), "systune.") {
			rotated = append(rotated, e.Name())
		}
	}
	require.Len(t, rotated, 1)

	old, err := os.ReadFile(filepath.Join(dir, rotated[0]))
	require.NoError(t, err)
	assert.Equal(t, "0123456789\n", string(old))
}

func TestRotatingWriter_CleanupMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "systune.log")

	// Pre-seed rotated files with distinct ages.
	for i, name := range []string{
		"systune.2026-01-01-000000.log",
		"systune.2026-01-02-000000.log",
		"systune.2026-01-03-000000.log",
	} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("old\n"), 0o644))
		mod := time.Now().Add(-time.Duration(3-i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024, MaxBackups: 1})
	require.NoError(t, err)
	defer w.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var rotated []string
	for _, e := range entries {
		if e.Name() != "systune.log" {
			rotated = append(rotated, e.Name())
		}
	}
	// Only the newest rotated file survives.
	require.Len(t, rotated, 1)
	assert.Equal(t, "systune.2026-01-03-000000.log", rotated[0])
}

func TestRotatingWriter_CleanupMaxAge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "systune.log")

	stale := filepath.Join(dir, "systune.2025-01-01-000000.log")
	require.NoError(t, os.WriteFile(stale, []byte("stale\n"), 0o644))
	old := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(dir, "systune.2026-08-01-000000.log")
	require.NoError(t, os.WriteFile(fresh, []byte("fresh\n"), 0o644))

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024, MaxAge: 30})
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestRotatingWriter_CloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "systune.log")
	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

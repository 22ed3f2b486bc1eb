package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsManagedFileChanges(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "fstab")
	unmanaged := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(managed, []byte("UUID=abc / ext4 defaults 0 1\n"), 0o644))
	require.NoError(t, os.WriteFile(unmanaged, []byte("127.0.0.1 localhost\n"), 0o644))

	w, err := New([]string{managed})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	go w.Run(ctx, func(path string, op fsnotify.Op) {
		changes <- path
	})

	// Changes to a file the watcher does not manage are filtered out.
	require.NoError(t, os.WriteFile(unmanaged, []byte("changed\n"), 0o644))
	// The managed file edit must be reported.
	require.NoError(t, os.WriteFile(managed, []byte("UUID=abc / ext4 noatime 0 1\n"), 0o644))

	select {
	case path := <-changes:
		assert.Equal(t, managed, path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcher_ReportsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "sysctl.conf")
	require.NoError(t, os.WriteFile(managed, []byte("vm.swappiness = 60\n"), 0o644))

	w, err := New([]string{managed})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	go w.Run(ctx, func(path string, op fsnotify.Op) {
		changes <- path
	})

	// Replace by rename, the way editors and atomic writers do.
	tmp := managed + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("vm.swappiness = 10\n"), 0o644))
	require.NoError(t, os.Rename(tmp, managed))

	select {
	case path := <-changes:
		assert.Equal(t, managed, path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rename notification")
	}
}

func TestWatcher_RunStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "grub")
	require.NoError(t, os.WriteFile(managed, []byte("GRUB_TIMEOUT=5\n"), 0o644))

	w, err := New([]string{managed})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	managed := filepath.Join(dir, "fstab")
	require.NoError(t, os.WriteFile(managed, []byte("\n"), 0o644))

	w, err := New([]string{managed})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

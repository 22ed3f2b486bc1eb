// Package backup creates and restores snapshots of the managed host
// configuration files. A snapshot is an immutable timestamped directory of
// file copies; snapshots are never deleted automatically.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jamesainslie/systune/pkg/systune/logging"
)

// dirTimeFormat names snapshot directories by creation time.
const dirTimeFormat = "20060102-150405"

// ErrNoSnapshot is returned when a restore is requested but no snapshot
// exists yet.
var ErrNoSnapshot = errors.New("no backup snapshot exists")

// Snapshot is one timestamped backup directory.
type Snapshot struct {
	// Dir is the snapshot directory path.
	Dir string

	// CreatedAt is the creation time parsed from the directory name.
	CreatedAt time.Time

	// Files are the base names of the files captured in the snapshot.
	Files []string
}

// Size returns the total size in bytes of the snapshot's files.
func (s *Snapshot) Size() int64 {
	var total int64
	for _, name := range s.Files {
		if info, err := os.Stat(filepath.Join(s.Dir, name)); err == nil {
			total += info.Size()
		}
	}
	return total
}

// Manager creates and restores snapshots of a fixed set of files.
type Manager struct {
	root  string
	files []string
}

// NewManager returns a Manager storing snapshots under root, covering the
// given configuration files.
func NewManager(root string, files []string) *Manager {
	return &Manager{root: root, files: files}
}

// Create makes a fresh timestamped snapshot and returns it. Each file is
// copied independently: a failed copy is logged and skipped, so partial
// snapshots are possible. Create fails only if the snapshot directory itself
// cannot be created.
func (m *Manager) Create() (*Snapshot, error) {
	logger := logging.Get("backup")

	now := time.Now()
	dir := filepath.Join(m.root, now.Format(dirTimeFormat))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	snap := &Snapshot{Dir: dir, CreatedAt: now}
	for _, src := range m.files {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(dir, name)); err != nil {
			logger.Error("failed to back up file", "file", src, "error", err)
			continue
		}
		snap.Files = append(snap.Files, name)
		logger.Info("backed up file", "file", src, "snapshot", dir)
	}

	return snap, nil
}

// Restore copies the snapshot's files back to their original locations.
// Files missing from the snapshot are logged and skipped; a copy failure
// aborts with an error since a half-restored host needs operator attention.
func (m *Manager) Restore(snap *Snapshot) error {
	if snap == nil {
		return ErrNoSnapshot
	}
	logger := logging.Get("backup")

	if _, err := os.Stat(snap.Dir); err != nil {
		return fmt.Errorf("snapshot directory %s: %w", snap.Dir, err)
	}

	for _, dst := range m.files {
		src := filepath.Join(snap.Dir, filepath.Base(dst))
		if _, err := os.Stat(src); err != nil {
			logger.Warn("file missing from snapshot, skipping", "file", src)
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("restoring %s: %w", dst, err)
		}
		logger.Info("restored file", "file", dst, "snapshot", snap.Dir)
	}
	return nil
}

// List returns all snapshots, newest first.
func (m *Manager) List() ([]*Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup root: %w", err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		createdAt, err := time.ParseInLocation(dirTimeFormat, entry.Name(), time.Local)
		if err != nil {
			continue
		}
		snap := &Snapshot{
			Dir:       filepath.Join(m.root, entry.Name()),
			CreatedAt: createdAt,
		}
		if files, err := os.ReadDir(snap.Dir); err == nil {
			for _, f := range files {
				if !f.IsDir() {
					snap.Files = append(snap.Files, f.Name())
				}
			}
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

// Latest returns the most recent snapshot, or ErrNoSnapshot if none exist.
func (m *Manager) Latest() (*Snapshot, error) {
	snaps, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNoSnapshot
	}
	return snaps[0], nil
}

// copyFile copies src to dst, preserving the source's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

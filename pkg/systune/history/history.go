// Package history records tuning runs as JSON entries on disk. The host's
// configuration files remain the source of truth for what is applied; the
// history is an audit trail of when systune ran and what it changed.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OpRecord is the outcome of one operation within a run.
type OpRecord struct {
	Name     string `json:"name"`
	Changed  int    `json:"changed"`
	Skipped  int    `json:"skipped"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Entry is one recorded tuning run.
type Entry struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Kernel     string     `json:"kernel,omitempty"`
	Operations []OpRecord `json:"operations"`
}

// Store persists run entries as one JSON file each.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first Record call.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("history directory cannot be empty")
	}
	return &Store{dir: dir}, nil
}

// Record persists a run entry and returns it.
func (s *Store) Record(kernel string, ops []OpRecord) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Kernel:     kernel,
		Operations: ops,
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling history entry: %w", err)
	}

	// Prefix the filename with the timestamp so directory order is
	// chronological.
	name := fmt.Sprintf("%s-%s.json", entry.Timestamp.Format("20060102-150405"), entry.ID)
	path := filepath.Join(s.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing history entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("renaming history entry: %w", err)
	}

	return entry, nil
}

// List returns entries newest first. A non-positive limit returns all
// entries.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Clean removes entries older than the retention period and returns how many
// were deleted.
func (s *Store) Clean(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if retentionDays <= 0 {
		return 0, nil
	}

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading history directory: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

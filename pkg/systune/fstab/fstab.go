// Package fstab parses the mount table file into structured records and
// rewrites mount options without fragile pattern matching. Edits preserve
// comments, blank lines, and the formatting of untouched records.
package fstab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrMountpointNotFound is returned when no record matches the requested
// mount point.
var ErrMountpointNotFound = errors.New("mount point not found in mount table")

// Record is one mount table entry: device, mount point, filesystem type,
// options, dump flag, and fsck pass number.
type Record struct {
	Spec       string
	Mountpoint string
	FSType     string
	Options    []string
	Dump       int
	Pass       int
}

// HasOption reports whether the record carries the given mount option.
func (r *Record) HasOption(opt string) bool {
	for _, o := range r.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// AddOptions appends the options that are not already present. It reports
// whether the record changed.
func (r *Record) AddOptions(opts ...string) bool {
	changed := false
	for _, opt := range opts {
		if !r.HasOption(opt) {
			r.Options = append(r.Options, opt)
			changed = true
		}
	}
	return changed
}

// String renders the record as a mount table line.
func (r *Record) String() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d",
		r.Spec, r.Mountpoint, r.FSType, strings.Join(r.Options, ","), r.Dump, r.Pass)
}

// line is one line of the file: either a parsed record or raw text
// (comment, blank, or anything that does not parse as a record).
type line struct {
	raw    string
	record *Record
	edited bool
}

// Table is a parsed mount table file.
type Table struct {
	lines []line
}

// Parse reads and parses a mount table file.
func Parse(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var t Table
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		raw := scanner.Text()
		t.lines = append(t.lines, line{raw: raw, record: parseRecord(raw)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &t, nil
}

// parseRecord parses a single line into a Record, or nil if the line is a
// comment, blank, or malformed.
func parseRecord(raw string) *Record {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 4 {
		return nil
	}

	r := &Record{
		Spec:       fields[0],
		Mountpoint: fields[1],
		FSType:     fields[2],
		Options:    strings.Split(fields[3], ","),
	}
	if len(fields) > 4 {
		r.Dump, _ = strconv.Atoi(fields[4])
	}
	if len(fields) > 5 {
		r.Pass, _ = strconv.Atoi(fields[5])
	}
	return r
}

// Records returns all parsed records in file order.
func (t *Table) Records() []*Record {
	var records []*Record
	for _, l := range t.lines {
		if l.record != nil {
			records = append(records, l.record)
		}
	}
	return records
}

// Find returns the record for the given mount point.
func (t *Table) Find(mountpoint string) (*Record, error) {
	for _, l := range t.lines {
		if l.record != nil && l.record.Mountpoint == mountpoint {
			return l.record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMountpointNotFound, mountpoint)
}

// AddOptions adds mount options to the record for mountpoint. It reports
// whether the table changed.
func (t *Table) AddOptions(mountpoint string, opts ...string) (bool, error) {
	for i := range t.lines {
		r := t.lines[i].record
		if r == nil || r.Mountpoint != mountpoint {
			continue
		}
		if r.AddOptions(opts...) {
			t.lines[i].edited = true
			return true, nil
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrMountpointNotFound, mountpoint)
}

// String renders the file. Untouched lines keep their original formatting;
// edited records are re-rendered.
func (t *Table) String() string {
	var b strings.Builder
	for _, l := range t.lines {
		if l.edited {
			b.WriteString(l.record.String())
		} else {
			b.WriteString(l.raw)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes the rendered table to path atomically via a temp file and
// rename.
func (t *Table) WriteFile(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(t.String()), 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

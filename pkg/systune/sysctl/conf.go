package sysctl

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Conf is an in-memory representation of a sysctl configuration file.
// Comments and blank lines are preserved verbatim; assignments are parsed so
// edits rewrite the matching line instead of string-matching the file.
type Conf struct {
	lines []confLine
}

// confLine is one line of the file. For assignment lines, key and value are
// set; for comments and blanks only raw is used.
type confLine struct {
	raw   string
	key   string
	value string
}

// ParseConf reads and parses a sysctl configuration file. A missing file
// yields an empty Conf, since sysctl.d style setups may not ship one.
func ParseConf(path string) (*Conf, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Conf{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var c Conf
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		c.lines = append(c.lines, parseConfLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &c, nil
}

// parseConfLine classifies a single line.
func parseConfLine(raw string) confLine {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		return confLine{raw: raw}
	}

	key, value, ok := strings.Cut(trimmed, "=")
	if !ok {
		return confLine{raw: raw}
	}

	return confLine{
		raw:   raw,
		key:   strings.TrimSpace(key),
		value: strings.TrimSpace(value),
	}
}

// Get returns the configured value for key and whether it is present.
// If the key appears more than once, the last assignment wins, matching
// sysctl's own behavior.
func (c *Conf) Get(key string) (string, bool) {
	value, found := "", false
	for _, line := range c.lines {
		if line.key == key {
			value, found = line.value, true
		}
	}
	return value, found
}

// Set ensures the file contains exactly one assignment of key to value.
// An existing assignment is rewritten in place; duplicates are dropped;
// otherwise the assignment is appended. It reports whether the file content
// changed.
func (c *Conf) Set(key, value string) bool {
	replaced := false
	changed := false
	kept := c.lines[:0]

	for _, line := range c.lines {
		if line.key != key {
			kept = append(kept, line)
			continue
		}
		if replaced {
			// Duplicate assignment: drop it.
			changed = true
			continue
		}
		replaced = true
		if line.value != value {
			changed = true
		}
		kept = append(kept, confLine{
			raw:   fmt.Sprintf("%s = %s", key, value),
			key:   key,
			value: value,
		})
	}
	c.lines = kept

	if !replaced {
		c.lines = append(c.lines, confLine{
			raw:   fmt.Sprintf("%s = %s", key, value),
			key:   key,
			value: value,
		})
		changed = true
	}
	return changed
}

// String renders the file content.
func (c *Conf) String() string {
	var b strings.Builder
	for _, line := range c.lines {
		b.WriteString(line.raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes the rendered content to path atomically via a temp file
// and rename.
func (c *Conf) WriteFile(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(c.String()), 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SummaryWriter appends one tagged line per completed optimization category
// to the summary log file and echoes the line to stdout. The file is never
// rotated; it is a compact audit trail of what was applied and when.
type SummaryWriter struct {
	mu   sync.Mutex
	file *os.File
}

// NewSummaryWriter opens (or creates) the summary log at path.
func NewSummaryWriter(path string) (*SummaryWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating summary log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening summary log: %w", err)
	}

	return &SummaryWriter{file: file}, nil
}

// Record writes one summary line for a category.
func (s *SummaryWriter) Record(category, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("summary writer is closed")
	}

	line := fmt.Sprintf("%s [SUMMARY] %s: %s\n",
		time.Now().Format("2006-01-02 15:04:05"), category, msg)

	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("writing summary line: %w", err)
	}

	fmt.Fprintf(os.Stdout, "[SUMMARY] %s: %s\n", category, msg)
	return nil
}

// Close closes the summary log file.
func (s *SummaryWriter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

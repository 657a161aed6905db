// Package storage writes the run's artifacts under the output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	calendarFile = "events.ics"
	debugFile    = "debug.html"
)

// Storage handles the output directory and the two files written per run:
// the debug listing snapshot (always) and the calendar (only when events
// were found).
type Storage struct {
	dir string
}

// New creates the output directory if needed.
func New(dir string) (*Storage, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{dir: dir}, nil
}

// WriteDebugHTML persists the raw first listing page verbatim.
func (s *Storage) WriteDebugHTML(html string) error {
	path := filepath.Join(s.dir, debugFile)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", debugFile, err)
	}
	return nil
}

// WriteCalendar writes the serialized calendar and returns its path. Callers
// skip this entirely when no events were found, leaving any previously
// published file untouched.
func (s *Storage) WriteCalendar(data string) (string, error) {
	path := filepath.Join(s.dir, calendarFile)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", calendarFile, err)
	}
	return path, nil
}

// CalendarPath returns where the calendar file is (or would be) written.
func (s *Storage) CalendarPath() string {
	return filepath.Join(s.dir, calendarFile)
}

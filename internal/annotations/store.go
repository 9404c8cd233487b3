// Package annotations persists ground-truth verdicts for classifier output
// as line-oriented subject,check,bool,comment records. Lookups match on the
// exact subject,check, prefix; updates rewrite the matching line in place
// and preserve every other line.
package annotations

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Store is a flat-file annotation store. A missing backing file is created
// empty on first access.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Lookup returns the recorded verdict and comment for (subject, check).
// found is false when no record exists.
func (s *Store) Lookup(subject, check string) (verdict bool, comment string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return false, "", false, err
	}

	prefix := subject + "," + check + ","
	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := line[len(prefix):]
		value, c, _ := strings.Cut(rest, ",")
		v, err := strconv.ParseBool(value)
		if err != nil {
			return false, "", false, fmt.Errorf("malformed annotation for %s,%s: %q", subject, check, line)
		}
		return v, c, true, nil
	}
	return false, "", false, nil
}

// Put records a verdict for (subject, check), replacing an existing record
// in place or appending a new line.
func (s *Store) Put(subject, check string, verdict bool, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	record := fmt.Sprintf("%s,%s,%t,%s", subject, check, verdict, comment)
	prefix := subject + "," + check + ","
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			lines[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, record)
	}

	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(s.path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}
	return nil
}

// readLines loads the backing file, creating it empty when absent.
func (s *Store) readLines() ([]string, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(s.path, nil, 0o644); err != nil {
			return nil, fmt.Errorf("create annotations file: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

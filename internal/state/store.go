package state

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrIO marks unrecoverable store failures (disk full, permissions).
// Callers treat these as fatal: continuing without durable state risks
// duplicate processing after a restart.
var ErrIO = errors.New("state store I/O failure")

// Store is the durable record of processed episode identifiers.
type Store struct {
	path string

	mu    sync.Mutex
	file  *os.File
	seen  map[string]struct{}
	order []string
}

// Open loads the processed-episode log at path, creating it if absent.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		seen: make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	s.file = file
	return s, nil
}

func (s *Store) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		s.order = append(s.order, id)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %w", ErrIO, s.path, err)
	}
	return nil
}

// IsProcessed reports whether the identifier completed the pipeline.
func (s *Store) IsProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// MarkProcessed durably appends the identifier. It must only be called
// after the episode's other side effects are confirmed on disk; it is the
// commit point of the pipeline.
func (s *Store) MarkProcessed(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty identifier", ErrIO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[id]; dup {
		return nil
	}
	if s.file == nil {
		return fmt.Errorf("%w: store is closed", ErrIO)
	}
	if _, err := s.file.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("%w: append %s: %w", ErrIO, s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrIO, s.path, err)
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return nil
}

// Count returns the number of processed identifiers.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Identifiers returns processed identifiers in append order.
func (s *Store) Identifiers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the backing file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

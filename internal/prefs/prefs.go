// Package prefs is a small JSON-file-backed store for the shell's boolean
// preferences (logged-in flag, theme flag). Changes are observable through an
// explicit subscription channel instead of ambient listener registration.
package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Well-known preference keys.
const (
	KeyIsLoggedIn   = "is_logged_in"
	KeyDynamicColor = "dynamic_color"
)

// Change reports one preference update.
type Change struct {
	Key   string
	Value bool
}

const changeBufferSize = 16

// Store persists boolean preferences to a single JSON file. Safe for
// concurrent use.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]bool
	subs   []chan Change
	closed bool
}

// Open loads the preference file, creating an empty store when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]bool{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

// Bool returns the stored value and whether the key was ever set.
func (s *Store) Bool(key string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// SetBool stores the value, persists the file and notifies subscribers.
// Unchanged values are not rewritten or announced.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("prefs: store is closed")
	}
	if v, ok := s.values[key]; ok && v == value {
		return nil
	}

	s.values[key] = value
	if err := s.persistLocked(); err != nil {
		return err
	}

	for _, sub := range s.subs {
		select {
		case sub <- Change{Key: key, Value: value}:
		default:
		}
	}
	return nil
}

// persistLocked writes the file via a temp file and rename so a crash never
// leaves a half-written preference file.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Watch returns a channel receiving future preference changes. Slow
// consumers miss updates rather than blocking writers.
func (s *Store) Watch() <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Change, changeBufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Close stops notifications and closes all subscription channels.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		close(sub)
	}
	s.subs = nil
}

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// Store holds the bearer credential in a file. It satisfies the API
// client's Credentials interface.
type Store struct {
	path string
	lock *flock.Flock

	mu     sync.Mutex
	cached string
	loaded bool
}

// NewStore builds a store for the token file at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the token file location.
func (s *Store) Path() string { return s.path }

// Token returns the current credential. The second return is false when
// no credential is stored. CURATOR_TOKEN overrides the stored credential
// for one-off invocations without touching the session file.
func (s *Store) Token() (string, bool) {
	if token := strings.TrimSpace(os.Getenv("CURATOR_TOKEN")); token != "" {
		return token, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.cached = s.readFile()
		s.loaded = true
	}
	if s.cached == "" {
		return "", false
	}
	return s.cached, true
}

// Save persists a new credential. Called exactly on login success.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to save an empty token")
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock session file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	s.mu.Lock()
	s.cached = token
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Clear removes the stored credential. Called on logout and whenever the
// control service reports an authentication failure.
func (s *Store) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock session file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}

	s.mu.Lock()
	s.cached = ""
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Store) readFile() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

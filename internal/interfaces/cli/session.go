package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrNotLoggedIn is returned when no session has been saved yet
var ErrNotLoggedIn = errors.New("not logged in: run `billed login` first")

// SessionFile persists the signed-in session between invocations
type SessionFile struct {
	Path string
}

// Load reads the saved session
func (f SessionFile) Load() (entity.Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return entity.Session{}, ErrNotLoggedIn
	}
	if err != nil {
		return entity.Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return entity.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Email == "" {
		return entity.Session{}, ErrNotLoggedIn
	}
	return session, nil
}

// Save writes the session; the file holds a bearer token so it is private
func (f SessionFile) Save(session entity.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the saved session
func (f SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

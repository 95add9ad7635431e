// Package session persists the opaque session credential across runs.
//
// The credential is the sole discriminant for whether the client is in the
// authenticated or unauthenticated view. It is written only by Save and
// Clear; the request layer reads it on every call to attach authorization,
// so a login or logout takes effect on the next request.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// Store loads, saves and clears the persisted session credential.
type Store struct {
	path string

	// ensureDir creates the parent directory before a save.
	ensureDir func() error
}

// NewStore creates a store backed by the token file at path.
// ensureDir is called before the first write; it may be nil.
func NewStore(path string, ensureDir func() error) *Store {
	return &Store{path: path, ensureDir: ensureDir}
}

// Load reads the persisted credential. It returns "" (and no error) when no
// session exists. The literal markers "", "null" and "undefined" are
// normalized to "no session": an earlier client stringified an absent value
// into storage and the file may still carry it.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		// Unreadable credential is treated as no session, not a crash.
		return "", nil
	}
	return normalize(tok.AccessToken), nil
}

// Save persists the credential with mode 0600 and activates the session.
func (s *Store) Save(credential string) error {
	credential = normalize(credential)
	if credential == "" {
		return errors.New("refusing to save empty credential")
	}
	if s.ensureDir != nil {
		if err := s.ensureDir(); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the persisted credential and deactivates the session.
// Clearing an absent session is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// Active reports whether a session credential is currently persisted.
func (s *Store) Active() bool {
	cred, err := s.Load()
	return err == nil && cred != ""
}

// normalize maps stringified absent values to "no session".
func normalize(credential string) string {
	credential = strings.TrimSpace(credential)
	switch credential {
	case "", "null", "undefined":
		return ""
	}
	return credential
}

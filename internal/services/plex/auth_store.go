package plex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type authState struct {
	ClientIdentifier   string `json:"client_identifier"`
	AuthorizationToken string `json:"authorization_token"`
}

// AuthStore abstracts persistence for plex.tv authentication state.
type AuthStore interface {
	Load() (authState, error)
	Save(authState) error
}

// FileAuthStore writes auth state to a JSON file on disk.
type FileAuthStore struct {
	path string
}

// NewFileAuthStore builds a FileAuthStore rooted at the provided path.
func NewFileAuthStore(path string) *FileAuthStore {
	return &FileAuthStore{path: path}
}

// Load reads auth state from disk. A missing file resolves to an empty state.
func (s *FileAuthStore) Load() (authState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return authState{}, nil
		}
		return authState{}, fmt.Errorf("read plex auth state: %w", err)
	}

	var state authState
	if err := json.Unmarshal(data, &state); err != nil {
		return authState{}, fmt.Errorf("decode plex auth state: %w", err)
	}
	return state, nil
}

// Save persists auth state to disk with restricted permissions.
func (s *FileAuthStore) Save(state authState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plex auth state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write plex auth state: %w", err)
	}
	return nil
}

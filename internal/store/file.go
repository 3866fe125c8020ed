package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FileTokenStore persists the OAuth2 token as JSON in a local file.
type FileTokenStore struct {
	path   string
	scopes []string
}

// NewFileTokenStore returns a store backed by the file at path. Scopes are
// written alongside the token for reference.
func NewFileTokenStore(path string, scopes ...string) *FileTokenStore {
	return &FileTokenStore{path: path, scopes: scopes}
}

// Path returns the token file location.
func (f *FileTokenStore) Path() string {
	return f.path
}

// LoadToken reads the token file. It returns ErrTokenNotFound if the file
// does not exist.
func (f *FileTokenStore) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", f.path, err)
	}
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &st.Token, nil
}

// SaveToken writes the token file with owner-only permissions.
func (f *FileTokenStore) SaveToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("failed to save token: token is nil")
	}
	data, err := json.MarshalIndent(storedToken{Token: *token, Scopes: f.scopes}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", f.path, err)
	}
	return nil
}

// DeleteToken removes the token file. A missing file is not an error.
func (f *FileTokenStore) DeleteToken() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file %s: %w", f.path, err)
	}
	return nil
}

var _ TokenStore = (*FileTokenStore)(nil)

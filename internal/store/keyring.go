package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const serviceName = "gbp-toolkit"

// KeyringTokenStore persists the OAuth2 token in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringTokenStore struct {
	user   string
	scopes []string
}

// NewKeyringTokenStore returns a store keyed by user within the toolkit's
// keyring service.
func NewKeyringTokenStore(user string, scopes ...string) *KeyringTokenStore {
	return &KeyringTokenStore{user: user, scopes: scopes}
}

// SaveToken stores the given OAuth2 token in the OS keyring.
func (k *KeyringTokenStore) SaveToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("failed to save token: token is nil")
	}
	data, err := json.Marshal(storedToken{Token: *token, Scopes: k.scopes})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := keyring.Set(serviceName, k.user, string(data)); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// LoadToken retrieves the OAuth2 token from the OS keyring.
func (k *KeyringTokenStore) LoadToken() (*oauth2.Token, error) {
	data, err := keyring.Get(serviceName, k.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load token from keyring: %w", err)
	}
	var st storedToken
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &st.Token, nil
}

// DeleteToken removes the OAuth2 token from the OS keyring. A missing entry
// is not an error.
func (k *KeyringTokenStore) DeleteToken() error {
	if err := keyring.Delete(serviceName, k.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

var _ TokenStore = (*KeyringTokenStore)(nil)

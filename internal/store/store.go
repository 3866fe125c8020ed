package store

import (
	"errors"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned by LoadToken when no token has been saved.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore persists the OAuth2 token for the toolkit's single credential.
type TokenStore interface {
	LoadToken() (*oauth2.Token, error)
	SaveToken(token *oauth2.Token) error
	DeleteToken() error
}

// storedToken is the serialized credential set: the OAuth2 token plus the
// scopes it was granted for.
type storedToken struct {
	oauth2.Token
	Scopes []string `json:"scopes,omitempty"`
}

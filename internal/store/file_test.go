package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileTokenStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	s := NewFileTokenStore(path, "https://www.googleapis.com/auth/business.manage")

	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.SaveToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(expiry))
}

func TestFileTokenStore_WritesScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	s := NewFileTokenStore(path, "scope-a", "scope-b")
	require.NoError(t, s.SaveToken(&oauth2.Token{AccessToken: "a"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "a", raw["access_token"])
	assert.Equal(t, []any{"scope-a", "scope-b"}, raw["scopes"])
}

func TestFileTokenStore_Missing(t *testing.T) {
	s := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	_, err := s.LoadToken()
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestFileTokenStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFileTokenStore(path).LoadToken()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenNotFound)
}

func TestFileTokenStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	s := NewFileTokenStore(path)
	require.NoError(t, s.SaveToken(&oauth2.Token{AccessToken: "a"}))
	require.NoError(t, s.DeleteToken())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteToken())
}

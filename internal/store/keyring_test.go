package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

func TestKeyringTokenStore(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringTokenStore("default")

	_, err := s.LoadToken()
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, s.SaveToken(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))
	got, err := s.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)

	require.NoError(t, s.DeleteToken())
	_, err = s.LoadToken()
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, s.DeleteToken())
}

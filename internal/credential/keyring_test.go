package credential

import (
	"net/http"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	v := New(keyring.NewArrayKeyring(nil))

	cookies, err := v.LoadSession("http://localhost:5000/api")
	require.NoError(t, err)
	assert.Nil(t, cookies)

	err = v.SaveSession("http://localhost:5000/api", []*http.Cookie{
		{Name: "access_token_cookie", Value: "jwt"},
		{Name: "csrf_access_token", Value: "csrf"},
	})
	require.NoError(t, err)

	cookies, err = v.LoadSession("http://localhost:5000/api")
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "csrf", cookies[1].Value)

	other, err := v.LoadSession("https://example.com/api")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, v.ClearSession())
	require.NoError(t, v.ClearSession())
	cookies, err = v.LoadSession("http://localhost:5000/api")
	require.NoError(t, err)
	assert.Nil(t, cookies)
}

func TestLastUsername(t *testing.T) {
	v := New(keyring.NewArrayKeyring(nil))

	name, err := v.LastUsername()
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, v.SaveUsername("alice"))
	name, err = v.LastUsername()
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

package dashboard

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/ui"
)

type fakeBackend struct {
	chatsErr   error
	perPage    int
	unverified bool
	listed     bool
}

func (f *fakeBackend) GetProfile(context.Context) (*model.User, error) {
	u := &model.User{Username: "alice", FirstName: "Alice", LastName: "Ng"}
	if !f.unverified {
		confirmed := "2024-02-01T10:00:00"
		u.EmailConfirmedAt = &confirmed
	}
	return u, nil
}

func (f *fakeBackend) ListLinkedAccounts(context.Context) ([]model.LinkedAccount, error) {
	f.listed = true
	return []model.LinkedAccount{{ID: 4, Service: model.ServiceGoogle, Email: "alice@gmail.com"}}, nil
}

func (f *fakeBackend) ListChats(_ context.Context, perPage, _ int) (*model.Page[model.Chat], error) {
	f.perPage = perPage
	if f.chatsErr != nil {
		return nil, f.chatsErr
	}
	id := 4
	return &model.Page[model.Chat]{Items: []model.Chat{
		{ID: 21, Name: "Lunch invite", OAuthID: &id},
		{ID: 22, IsSent: true},
	}}, nil
}

func TestLoadFillsEverything(t *testing.T) {
	b := &fakeBackend{}
	m := New(b, keys.DefaultKeyMap(), 3, 100, 30)

	msg := m.Init()()
	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, 3, b.perPage)

	m, _ = m.Update(loaded)
	require.NotNil(t, m.User())
	assert.Len(t, m.Accounts(), 1)
	assert.Len(t, m.Chats(), 2)

	view := m.View()
	assert.Contains(t, view, "Welcome, Alice Ng")
	assert.Contains(t, view, "Lunch invite")
	assert.Contains(t, view, Untitled)
}

func TestLoadFailureIsOneToast(t *testing.T) {
	m := New(&fakeBackend{chatsErr: errors.New("boom")}, keys.DefaultKeyMap(), 3, 100, 30)

	loaded := m.Init()().(LoadedMsg)
	require.Error(t, loaded.Err)
	assert.Contains(t, loaded.Err.Error(), "loading chats")

	m, cmd := m.Update(loaded)
	require.NotNil(t, cmd)
	toast, ok := cmd().(ui.ToastMsg)
	require.True(t, ok)
	assert.Equal(t, model.LevelError, toast.Level)
	assert.Nil(t, m.User())
}

func TestLoadStopsAtProfileForUnverifiedUser(t *testing.T) {
	b := &fakeBackend{unverified: true}
	m := New(b, keys.DefaultKeyMap(), 3, 100, 30)

	loaded := m.Init()().(LoadedMsg)
	require.NoError(t, loaded.Err)
	require.NotNil(t, loaded.User)
	assert.False(t, loaded.User.Verified())
	assert.False(t, b.listed)
	assert.Zero(t, b.perPage)
}

func TestOpenChatAndNewEmail(t *testing.T) {
	m := New(&fakeBackend{}, keys.DefaultKeyMap(), 3, 100, 30)
	m, _ = m.Update(m.Init()())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{Route: ui.RouteCompose, ChatID: 21}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.NavigateMsg{Route: ui.RouteCompose}, cmd())
}

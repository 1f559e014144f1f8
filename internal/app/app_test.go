package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/credential"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	appsync "github.com/nhle/easymail/internal/sync"
	"github.com/nhle/easymail/internal/ui"
	"github.com/nhle/easymail/internal/ui/auth"
	"github.com/nhle/easymail/internal/ui/command"
	"github.com/nhle/easymail/internal/ui/dashboard"
	"github.com/nhle/easymail/tests/testutil"
)

type fixture struct {
	fb     *testutil.FakeBackend
	client *api.Client
	store  *store.SQLiteStore
	vault  *credential.Vault
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fb := testutil.NewFakeBackend(t)
	c, err := api.NewClient(fb.URL(), 5*time.Second)
	require.NoError(t, err)

	return &fixture{
		fb:     fb,
		client: c,
		store:  testutil.NewTestStore(t),
		vault:  credential.New(keyring.NewArrayKeyring(nil)),
	}
}

func (f *fixture) app(t *testing.T) Model {
	t.Helper()

	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	m := New(Deps{Config: cfg, Client: f.client, Store: f.store, Vault: f.vault})
	t.Cleanup(m.poller.Stop)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	f.fb.Handle("POST /user/auth", testutil.LoginHandler("csrf-1"))
	_, err := f.client.Authenticate(context.Background(), "alice", "pw123", true)
	require.NoError(t, err)
	require.NotEmpty(t, f.client.Cookies())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// batch returns the commands of a batched command.
func batch(cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return nil
	}
	if b, ok := cmd().(tea.BatchMsg); ok {
		return b
	}
	return []tea.Cmd{cmd}
}

// drain runs cmd and every command batched inside it, returning the
// messages produced. It must only be used on commands that do not tick.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if b, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range b {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vault.SaveUsername("alice"))

	m := f.app(t)

	assert.Equal(t, ui.RouteLogin, m.Route())
	assert.Contains(t, m.View(), "signed out")
}

func TestStartsOnDashboardWithRestoredSession(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	m := f.app(t)
	assert.Equal(t, ui.RouteDashboard, m.Route())
}

func TestToastIsShownLoggedAndExpires(t *testing.T) {
	f := newFixture(t)
	m := f.app(t)

	m, cmd := update(t, m, ui.ToastMsg{Level: model.LevelSuccess, Text: "Contact added"})
	assert.Equal(t, "Contact added", m.Toast().Text)
	assert.Contains(t, m.View(), "Contact added")

	cmds := batch(cmd)
	require.Len(t, cmds, 2)
	m, _ = update(t, m, cmds[0]())
	assert.Contains(t, m.View(), "[1 new]")

	unread, err := f.store.GetUnreadNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Contact added", unread[0].Message)

	m, _ = update(t, m, ui.ToastMsg{Level: model.LevelInfo, Text: "Second"})
	m, _ = update(t, m, toastExpiredMsg{gen: 1})
	assert.Equal(t, "Second", m.Toast().Text, "stale expiry keeps the newer toast")

	m, _ = update(t, m, toastExpiredMsg{gen: 2})
	assert.Empty(t, m.Toast().Text)
}

func TestRememberedLoginIsStored(t *testing.T) {
	f := newFixture(t)
	m := f.app(t)
	f.signIn(t)

	_, cmd := update(t, m, auth.LoggedInMsg{Username: "alice", Remember: true})
	require.NotNil(t, cmd)
	cmd()

	name, err := f.vault.LastUsername()
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	cookies, err := f.vault.LoadSession(f.client.BaseURL())
	require.NoError(t, err)
	assert.NotEmpty(t, cookies)
}

func TestLoginWithoutRememberDropsStoredSession(t *testing.T) {
	f := newFixture(t)
	m := f.app(t)
	f.signIn(t)
	require.NoError(t, f.vault.SaveSession(f.client.BaseURL(), f.client.Cookies()))

	_, cmd := update(t, m, auth.LoggedInMsg{Username: "alice"})
	cmd()

	cookies, err := f.vault.LoadSession(f.client.BaseURL())
	require.NoError(t, err)
	assert.Empty(t, cookies)
}

func TestSessionExpiredReturnsToLogin(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	require.NoError(t, f.vault.SaveSession(f.client.BaseURL(), f.client.Cookies()))
	m := f.app(t)
	require.Equal(t, ui.RouteDashboard, m.Route())

	m, _ = update(t, m, ui.SessionExpiredMsg{})

	assert.Equal(t, ui.RouteLogin, m.Route())
	assert.Empty(t, f.client.Cookies())
	cookies, err := f.vault.LoadSession(f.client.BaseURL())
	require.NoError(t, err)
	assert.Empty(t, cookies)
}

func TestUnverifiedUserIsSentToVerification(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	require.NoError(t, f.vault.SaveSession(f.client.BaseURL(), f.client.Cookies()))
	f.fb.Handle("GET /user/profile", testutil.JSON(http.StatusOK, model.User{ID: 1, Username: "alice"}))
	f.fb.Handle("GET /link", testutil.JSON(http.StatusUnauthorized, model.Message{
		Message: "You need to verify your user before doing this action.",
	}))
	m := f.app(t)
	require.Equal(t, ui.RouteDashboard, m.Route())

	m, _ = update(t, m, dashboard.Load(f.client, 5)())

	assert.Equal(t, ui.RouteVerify, m.Route())
	assert.Equal(t, auth.ScreenVerify, m.auth.Screen())
	assert.False(t, m.polling)
	assert.NotEmpty(t, f.client.Cookies())
	cookies, err := f.vault.LoadSession(f.client.BaseURL())
	require.NoError(t, err)
	assert.NotEmpty(t, cookies)
}

func TestUnauthorizedWithMessageIsOnlyAToast(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	require.NoError(t, f.vault.SaveSession(f.client.BaseURL(), f.client.Cookies()))
	m := f.app(t)

	denied := &api.Error{
		Kind:    api.KindMessage,
		Status:  http.StatusUnauthorized,
		Message: "You need to verify your user before doing this action.",
	}
	_, cmd := update(t, m, dashboard.LoadedMsg{Err: denied})

	msgs := drain(cmd)
	require.NotEmpty(t, msgs)
	for _, msg := range msgs {
		assert.NotEqual(t, ui.SessionExpiredMsg{}, msg)
	}
	assert.Contains(t, msgs, ui.ToastMsg{Level: model.LevelError, Text: denied.Message})
	assert.Equal(t, ui.RouteDashboard, m.Route())
	assert.NotEmpty(t, f.client.Cookies())
}

func TestExpiredTokenEndsSession(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	m := f.app(t)

	expired := &api.Error{Kind: api.KindMessage, Status: http.StatusUnauthorized, Message: "Token has expired", Expired: true}
	_, cmd := update(t, m, dashboard.LoadedMsg{Err: expired})

	msgs := drain(cmd)
	require.Contains(t, msgs, ui.SessionExpiredMsg{})
	m, _ = update(t, m, ui.SessionExpiredMsg{})
	assert.Equal(t, ui.RouteLogin, m.Route())
	assert.Empty(t, f.client.Cookies())
}

func TestDashboardLoadSetsHeader(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	m := f.app(t)

	confirmed := "2024-02-01T10:00:00"
	m, _ = update(t, m, dashboard.LoadedMsg{
		User:     &model.User{Username: "alice", FirstName: "Alice", LastName: "Ng", EmailConfirmedAt: &confirmed},
		Accounts: []model.LinkedAccount{{ID: 4, Service: model.ServiceGoogle, Email: "alice@gmail.com"}},
	})

	assert.True(t, m.polling)
	assert.Contains(t, m.View(), "Alice Ng")
}

func TestViewKeysRespectTyping(t *testing.T) {
	f := newFixture(t)
	m := f.app(t)

	m, _ = update(t, m, runes("3"))
	assert.Equal(t, ui.RouteLogin, m.Route(), "digits type into the login form")

	f.signIn(t)
	m = f.app(t)
	m, cmd := update(t, m, runes("3"))
	assert.Equal(t, ui.RouteContacts, m.Route())
	assert.NotNil(t, cmd)
}

func TestReplyReachesViewAfterNavigation(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.fb.Handle("GET /chat", testutil.JSON(http.StatusOK, model.Page[model.Chat]{
		Items: []model.Chat{{ID: 7, Name: "Report"}},
		Page:  1,
		Pages: 1,
	}))
	m := f.app(t)

	m, cmd := update(t, m, ui.NavigateMsg{Route: ui.RouteHistory})
	require.NotNil(t, cmd)
	reply := cmd()

	m, _ = update(t, m, ui.NavigateMsg{Route: ui.RouteProfile})
	m, _ = update(t, m, reply)

	assert.Equal(t, ui.RouteProfile, m.Route())
	require.Len(t, m.history.Chats(), 1)
	assert.Equal(t, 7, m.history.Chats()[0].ID)
}

func TestCommandPalette(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	m := f.app(t)

	m, _ = update(t, m, runes(":"))
	require.Equal(t, overlayCommand, m.overlay)
	assert.Contains(t, m.View(), "Command Palette")

	m, _ = update(t, m, command.CommandMsg{Action: command.ActionNavigate, Route: ui.RouteLinks, Raw: "accounts"})
	assert.Equal(t, overlayNone, m.overlay)
	assert.Equal(t, ui.RouteLinks, m.Route())

	_, cmd := update(t, m, command.CommandMsg{Action: command.ActionNone, Raw: "fly"})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.ToastMsg{Level: model.LevelWarning, Text: "Unknown command: fly"}, cmd())
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.fb.Handle("DELETE /user/auth", testutil.JSON(http.StatusOK, model.Message{Message: "Logged out"}))
	require.NoError(t, f.store.SetValue(context.Background(), store.KeyGravatarURL, "https://gravatar.example/a"))
	m := f.app(t)
	m.poller.SetTarget(appsync.Target{Service: model.ServiceGoogle, AccountID: 4})

	m, cmd := update(t, m, command.CommandMsg{Action: command.ActionLogout, Raw: "logout"})
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())

	assert.Empty(t, f.client.Cookies())
	assert.Equal(t, appsync.Status{}, m.poller.Status(), "no account is polled after logout")
	_, ok, err := f.store.GetValue(context.Background(), store.KeyGravatarURL)
	require.NoError(t, err)
	assert.False(t, ok)

	cmds := batch(cmd)
	require.Len(t, cmds, 2)
	assert.Equal(t, ui.ToastMsg{Level: model.LevelSuccess, Text: "Logged out"}, cmds[0]())
}

func TestHelpOverlayMarksNotificationsRead(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()
	require.NoError(t, f.store.CreateNotification(ctx, model.Notification{Level: model.LevelInfo, Message: "2 new unread message(s)"}))
	m := f.app(t)

	m, cmd := update(t, m, runes("?"))
	require.Equal(t, overlayHelp, m.overlay)
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "2 new unread message(s)")
	unread, err := f.store.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, overlayNone, m.overlay)
}

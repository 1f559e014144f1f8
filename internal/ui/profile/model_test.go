package profile

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/countdown"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/internal/ui"
	"github.com/nhle/easymail/tests/testutil"
)

func TestGravatarURL(t *testing.T) {
	got := GravatarURL("  Alice@Example.com ", "Alice")
	assert.Equal(t,
		"https://www.gravatar.com/avatar/c160f8cc69a4f0bf2b0362752353d060"+
			"?d=https%3A%2F%2Fui-avatars.com%2Fapi%2FAlice%2F128",
		got)
}

func TestCachedAvatar(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	u := model.User{Email: "alice@example.com", FirstName: "Alice"}

	first, err := CachedAvatar(ctx, s, u)
	require.NoError(t, err)
	assert.Equal(t, GravatarURL(u.Email, "Alice"), first)

	u.Email = "other@example.com"
	second, err := CachedAvatar(ctx, s, u)
	require.NoError(t, err)
	assert.Equal(t, first, second, "cached value wins")

	require.NoError(t, s.DeleteValue(ctx, store.KeyGravatarURL))
	third, err := CachedAvatar(ctx, s, u)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func newProfile(t *testing.T, fb *testutil.FakeBackend) (Model, *store.SQLiteStore) {
	t.Helper()
	c, err := api.NewClient(fb.URL(), 5*time.Second)
	require.NoError(t, err)
	s := testutil.NewTestStore(t)
	m := New(c, s, countdown.NewTimer(s, store.KeyTimerEnd), keys.DefaultKeyMap(), 80, 30)
	return m, s
}

func TestLoadProfile(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("GET /user/profile", testutil.JSON(http.StatusOK, model.User{
		ID: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice",
	}))

	m, _ := newProfile(t, fb)
	m, _ = m.Update(m.Init()())

	require.NotNil(t, m.User())
	assert.Equal(t, "alice", m.User().Username)
	assert.Contains(t, m.View(), "@alice")
}

func TestEmailChangeBlockedDuringCooldown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m, s := newProfile(t, fb)
	m.user = &model.User{Email: "alice@example.com"}

	_, err := countdown.NewTimer(s, store.KeyTimerEnd).Start(context.Background(), 30*time.Second)
	require.NoError(t, err)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	require.NotNil(t, cmd)
	toast, ok := cmd().(ui.ToastMsg)
	require.True(t, ok)
	assert.Equal(t, model.LevelWarning, toast.Level)
	assert.Equal(t, "Please wait for 30 seconds before updating your email again", toast.Text)
	assert.Equal(t, modeView, m.mode)
}

func TestEmailChangeStartsCooldown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("PUT /user/email", testutil.JSON(http.StatusOK, model.Message{Message: "Verification code sent"}))

	m, s := newProfile(t, fb)
	m.user = &model.User{Email: "alice@example.com"}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	require.Equal(t, modeEmail, m.mode)
	m.fb.email = "new@example.com"

	m, cmd := m.submit()
	assert.Equal(t, "Sending...", m.ButtonLabel())
	m, _ = m.Update(cmd())

	assert.Equal(t, modeEmailOTP, m.mode)
	_, ok, err := s.GetValue(context.Background(), store.KeyTimerEnd)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "backend message",
			err:  &api.Error{Kind: api.KindMessage, Status: 400, Message: "Current password is incorrect."},
			want: "Current password is incorrect.",
		},
		{
			name: "field errors",
			err: &api.Error{Kind: api.KindValidation, Status: 400, Message: "Validation failed",
				Fields: map[string]string{"new_password": "too short"}},
			want: PasswordRuleMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toast, ok := passwordFailure(tt.err)().(ui.ToastMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, toast.Text)
		})
	}
}

func TestGraduationYearParsing(t *testing.T) {
	m := New(nil, nil, nil, keys.DefaultKeyMap(), 80, 30)
	m.fb.gradYear = " 2024 "
	u, err := m.profileUpdate()
	require.NoError(t, err)
	require.NotNil(t, u.GraduationYear)
	assert.Equal(t, 2024, *u.GraduationYear)

	m.fb.gradYear = "soon"
	_, err = m.profileUpdate()
	assert.Error(t, err)
}

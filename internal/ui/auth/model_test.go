package auth

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
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/internal/ui"
	"github.com/nhle/easymail/tests/testutil"
)

func newClient(t *testing.T, fb *testutil.FakeBackend) *api.Client {
	t.Helper()
	c, err := api.NewClient(fb.URL(), 5*time.Second)
	require.NoError(t, err)
	return c
}

// collect runs cmd and every command of a batch it yields, returning the
// resulting messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func toasts(msgs []tea.Msg) []ui.ToastMsg {
	var out []ui.ToastMsg
	for _, msg := range msgs {
		if toast, ok := msg.(ui.ToastMsg); ok {
			out = append(out, toast)
		}
	}
	return out
}

func TestLoginSuccessNavigatesToDashboard(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user/auth", testutil.LoginHandler("tok-1"))

	m := New(newClient(t, fb), nil, 80, 24)
	m.fb.username = "alice"
	m.fb.password = "pw123"

	m, cmd := m.submit()
	assert.Equal(t, LabelLoggingIn, m.ButtonLabel())
	require.NotNil(t, cmd)

	start := time.Now()
	m, cmd = m.Update(cmd())
	msgs := collect(cmd)

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	fb.Last(t).Decode(t, &body)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "pw123", body.Password)
	assert.False(t, body.Remember)

	assert.Contains(t, msgs, tea.Msg(ui.ToastMsg{Level: model.LevelSuccess, Text: "Logged in"}))
	assert.Contains(t, msgs, tea.Msg(LoggedInMsg{Username: "alice"}))
	assert.Contains(t, msgs, tea.Msg(ui.NavigateMsg{Route: ui.RouteDashboard}))
	assert.GreaterOrEqual(t, time.Since(start), ui.NavigateDelay)
}

func TestLoginFailureRevertsButton(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user/auth", testutil.JSON(http.StatusUnauthorized, map[string]string{
		"message": "bad credentials",
	}))

	m := New(newClient(t, fb), nil, 80, 24)
	m.fb.username = "alice"
	m.fb.password = "wrong"

	m, cmd := m.submit()
	m, cmd = m.Update(cmd())
	msgs := collect(cmd)

	assert.Equal(t, LabelLogin, m.ButtonLabel())
	assert.Equal(t, []ui.ToastMsg{{Level: model.LevelError, Text: "bad credentials"}}, toasts(msgs))
	for _, msg := range msgs {
		assert.NotEqual(t, ui.NavigateMsg{Route: ui.RouteDashboard}, msg)
		assert.NotEqual(t, ui.SessionExpiredMsg{}, msg)
	}
}

func TestLoginFailureWithoutMessage(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user/auth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	m := New(newClient(t, fb), nil, 80, 24)
	m.fb.username = "alice"
	m.fb.password = "pw"

	m, cmd := m.submit()
	m, cmd = m.Update(cmd())

	got := toasts(collect(cmd))
	require.Len(t, got, 1)
	assert.Equal(t, api.UnknownErrorMessage, got[0].Text)
	assert.Equal(t, LabelLogin, m.ButtonLabel())
}

func TestRegisterNavigatesToVerify(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user", testutil.JSON(http.StatusOK, model.Message{Message: "created"}))

	m := New(newClient(t, fb), nil, 80, 24)
	m.Show(ScreenRegister)
	assert.Equal(t, LabelRegister, m.ButtonLabel())

	m.fb.username = "bob"
	m.fb.email = "bob@example.com"
	m.fb.password = "pw"
	m.fb.terms = true
	m.fb.privacy = true

	m, cmd := m.submit()
	assert.Equal(t, LabelRegistering, m.ButtonLabel())
	_, cmd = m.Update(cmd())
	msgs := collect(cmd)

	var reg model.Registration
	fb.Last(t).Decode(t, &reg)
	assert.Equal(t, "bob@example.com", reg.Email)
	assert.True(t, reg.Terms)

	assert.Contains(t, msgs, tea.Msg(ui.ToastMsg{Level: model.LevelSuccess, Text: "Registered"}))
	assert.Contains(t, msgs, tea.Msg(ui.NavigateMsg{Route: ui.RouteVerify}))
}

func TestVerifyRejectsMalformedOTP(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	m := New(newClient(t, fb), nil, 80, 24)
	m.Show(ScreenVerify)
	m.fb.otp = "12a456"

	m, cmd := m.submit()
	assert.Empty(t, m.fb.otp, "invalid code is cleared")
	assert.Equal(t, []ui.ToastMsg{{Level: model.LevelError, Text: "invalid OTP"}}, toasts(collect(cmd)))
	assert.Empty(t, fb.Requests())
}

func TestValidOTP(t *testing.T) {
	assert.True(t, ValidOTP("012345"))
	assert.False(t, ValidOTP("12345"))
	assert.False(t, ValidOTP("1234567"))
	assert.False(t, ValidOTP("12 456"))
	assert.False(t, ValidOTP("١٢٣٤٥٦"))
}

func TestResendStartsPersistedCooldown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user/verify/send", testutil.JSON(http.StatusOK, model.Message{Message: "Code sent"}))

	s := testutil.NewTestStore(t)
	timer := countdown.NewTimer(s, store.KeyTimerEnd)

	m := New(newClient(t, fb), timer, 80, 24)
	m.Show(ScreenVerify)
	assert.Equal(t, LabelResend, m.SecondaryLabel())

	cmd := m.resend()
	assert.Equal(t, LabelResending, m.SecondaryLabel())
	m, cmd = m.Update(cmd())

	assert.Equal(t, "Resend code in 60 seconds", m.SecondaryLabel())
	assert.Nil(t, m.resend(), "resend is disabled during the cooldown")

	_, ok, err := s.GetValue(context.Background(), store.KeyTimerEnd)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := timer.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded.Expired(time.Now()))
	require.NotNil(t, cmd)
}

func TestForgotPasswordFlow(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Handle("POST /user/password", testutil.JSON(http.StatusOK, model.Message{Message: "OTP sent"}))
	fb.Handle("PUT /user/password", testutil.JSON(http.StatusOK, model.Message{Message: "Password reset"}))

	s := testutil.NewTestStore(t)
	m := New(newClient(t, fb), countdown.NewTimer(s, store.KeyTimerEnd), 80, 24)
	m.Show(ScreenForgot)
	assert.Equal(t, LabelSendOTP, m.ButtonLabel())

	m.fb.email = "alice@example.com"
	m, cmd := m.submit()
	assert.Equal(t, LabelSending, m.ButtonLabel())
	m, cmd = m.Update(cmd())
	assert.Contains(t, toasts(collect(cmd)), ui.ToastMsg{Level: model.LevelSuccess, Text: "OTP sent"})
	assert.Equal(t, LabelReset, m.ButtonLabel())

	m.fb.otp = "123456"
	m.fb.newPass = "new-pw"
	m.fb.confirm = "new-pw"
	m, cmd = m.submit()
	assert.Equal(t, LabelResetting, m.ButtonLabel())
	_, cmd = m.Update(cmd())
	msgs := collect(cmd)

	var reset model.PasswordReset
	fb.Last(t).Decode(t, &reset)
	assert.Equal(t, model.PasswordReset{
		Email:           "alice@example.com",
		OTP:             "123456",
		NewPassword:     "new-pw",
		ConfirmPassword: "new-pw",
	}, reset)
	assert.Contains(t, msgs, tea.Msg(ui.NavigateMsg{Route: ui.RouteDashboard}))
}

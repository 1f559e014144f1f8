package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/internal/ui"
	"github.com/nhle/easymail/internal/ui/auth"
)

// loggedOutMsg is sent when the backend answered the logout call.
type loggedOutMsg struct {
	resp *model.Message
	err  error
}

// persistLogin remembers the username and, when asked to, the session
// cookies in the system keyring. A login without "remember me" drops any
// session stored earlier.
func (m Model) persistLogin(msg auth.LoggedInMsg) tea.Cmd {
	v := m.vault
	if v == nil {
		return nil
	}
	c, lg := m.client, m.log

	return func() tea.Msg {
		if err := v.SaveUsername(msg.Username); err != nil {
			lg.Warn().Err(err).Msg("Failed to remember username")
		}

		if !msg.Remember {
			if err := v.ClearSession(); err != nil {
				lg.Warn().Err(err).Msg("Failed to clear stored session")
			}
			return nil
		}
		if err := v.SaveSession(c.BaseURL(), c.Cookies()); err != nil {
			lg.Warn().Err(err).Msg("Failed to store session")
		}
		return nil
	}
}

// logout ends the session on the backend and drops the cached avatar.
func (m Model) logout() tea.Cmd {
	c, s, lg := m.client, m.store, m.log

	return func() tea.Msg {
		ctx := context.Background()
		resp, err := c.Logout(ctx)
		if err != nil {
			return loggedOutMsg{err: err}
		}
		if err := s.DeleteValue(ctx, store.KeyGravatarURL); err != nil {
			lg.Warn().Err(err).Msg("Failed to drop cached avatar")
		}
		return loggedOutMsg{resp: resp}
	}
}

func (m Model) handleLoggedOut(msg loggedOutMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		return m, ui.Failure(msg.err)
	}

	m.endSession()
	text := "Logged out"
	if msg.resp != nil && msg.resp.Message != "" {
		text = msg.resp.Message
	}
	return m, tea.Batch(ui.Success(text), ui.NavigateAfter(ui.RouteLogin))
}

// endSession forgets every trace of the signed-in user: cookies in
// memory and in the keyring, and the state of the signed-in views.
func (m *Model) endSession() {
	m.client.ClearSession()
	if m.vault != nil {
		if err := m.vault.ClearSession(); err != nil {
			m.log.Warn().Err(err).Msg("Failed to clear stored session")
		}
	}
	m.poller.ClearTarget()
	m.overlay = overlayNone
	m.buildViews()
}

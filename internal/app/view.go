package app

import (
	"fmt"
	"strings"

	appsync "github.com/nhle/easymail/internal/sync"
	"github.com/nhle/easymail/internal/ui"
)

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "easymail"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("easymail [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.toast)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayCommand:
		return m.commandView.View()
	}

	switch m.route {
	case ui.RouteLogin, ui.RouteRegister, ui.RouteVerify, ui.RouteForgot:
		return m.auth.View()
	case ui.RouteDashboard:
		return m.dashboard.View()
	case ui.RouteInbox:
		return m.inbox.View()
	case ui.RouteCompose:
		return m.compose.View()
	case ui.RouteContacts:
		return m.contacts.View()
	case ui.RouteHistory:
		return m.history.View()
	case ui.RouteLinks:
		return m.links.View()
	case ui.RouteProfile:
		return m.profile.View()
	default:
		return ""
	}
}

// headerStatus shows the signed-in user, the unread mail count of the
// active account and the poll state.
func (m Model) headerStatus() string {
	if m.signedOut() {
		return "signed out"
	}

	var parts []string
	if m.user != nil {
		name := m.user.Username
		if full := m.user.FullName(); full != "" {
			name = full
		}
		parts = append(parts, name)
	}
	if m.mailUnread > 0 {
		parts = append(parts, fmt.Sprintf("%d unread", m.mailUnread))
	}

	status := m.poller.Status()
	switch status.State {
	case appsync.PollRunning:
		parts = append(parts, "syncing")
	case appsync.PollError:
		parts = append(parts, "⚠ offline")
	}
	return strings.Join(parts, " | ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case overlayHelp:
		return "? close help | esc back"
	case overlayCommand:
		return "enter execute | tab complete | esc close"
	}

	switch m.route {
	case ui.RouteLogin:
		return "enter submit | ctrl+r register | ctrl+f forgot password | ctrl+c quit"
	case ui.RouteRegister, ui.RouteForgot:
		return "enter submit | esc back to login"
	case ui.RouteVerify:
		return "enter verify | ctrl+o resend code | esc back to login"
	case ui.RouteInbox:
		return "enter open | m more | / search | tab folder | a account | R reply | esc back"
	case ui.RouteCompose:
		return "enter send instruction | ctrl+s send | ctrl+p paraphrase | ctrl+o details | ctrl+e export | ctrl+n new | esc back"
	case ui.RouteContacts:
		return "n new | e edit | d delete | [ ] page | esc back"
	case ui.RouteHistory:
		return "enter open | e rename | d delete | [ ] page | esc back"
	case ui.RouteLinks:
		return "r refresh | d unlink | esc back"
	case ui.RouteProfile:
		return "e edit | p password | m email | esc back"
	default:
		return "1 inbox | 2 compose | 3 contacts | 4 history | 5 accounts | 6 profile | : command | ? help"
	}
}

package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/easymail/internal/ui"
)

type viewSwitch struct {
	binding key.Binding
	route   ui.Route
}

// viewSwitches maps the view switch bindings to their screens.
func (m Model) viewSwitches() []viewSwitch {
	return []viewSwitch{
		{m.keys.Inbox, ui.RouteInbox},
		{m.keys.Compose, ui.RouteCompose},
		{m.keys.Contacts, ui.RouteContacts},
		{m.keys.History, ui.RouteHistory},
		{m.keys.Links, ui.RouteLinks},
		{m.keys.Profile, ui.RouteProfile},
	}
}

// handleKey processes keys that work regardless of the active view. The
// boolean is false when the key belongs to the view.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Quit) {
		// ctrl+c aborts an open form first
		if m.overlay != overlayNone || m.signedOut() || !m.formOpen() {
			m.poller.Stop()
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.overlay = overlayNone
		}
		return m, nil, true

	case overlayCommand:
		if key.Matches(msg, m.keys.Back) {
			m.overlay = overlayNone
			return m, nil, true
		}
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd, true
	}

	if m.typing() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		next, cmd := m.openHelp()
		return next, cmd, true

	case key.Matches(msg, m.keys.Command):
		m.overlay = overlayCommand
		cmd := m.commandView.Focus()
		return m, cmd, true
	}

	for _, v := range m.viewSwitches() {
		if key.Matches(msg, v.binding) {
			next, cmd := m.navigate(ui.NavigateMsg{Route: v.route})
			return next, cmd, true
		}
	}
	return m, nil, false
}

// typing reports whether the active view has a text input or form that
// owns single-character keys.
func (m Model) typing() bool {
	switch m.route {
	case ui.RouteDashboard:
		return false
	case ui.RouteInbox:
		return !m.inbox.Idle()
	case ui.RouteContacts:
		return !m.contacts.Idle()
	case ui.RouteHistory:
		return !m.history.Idle()
	case ui.RouteLinks:
		return !m.links.Idle()
	case ui.RouteProfile:
		return !m.profile.Idle()
	default:
		// signed-out forms and the compose input always type
		return true
	}
}

// formOpen reports whether the active view shows a form that ctrl+c
// should abort rather than quit.
func (m Model) formOpen() bool {
	switch m.route {
	case ui.RouteCompose:
		return !m.compose.Idle()
	case ui.RouteDashboard:
		return false
	default:
		return m.typing()
	}
}

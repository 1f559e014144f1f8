package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/easymail/internal/ui"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		action Action
		route  ui.Route
	}{
		{"inbox", ActionNavigate, ui.RouteInbox},
		{" /Contacts ", ActionNavigate, ui.RouteContacts},
		{"accounts", ActionNavigate, ui.RouteLinks},
		{"chats", ActionNavigate, ui.RouteHistory},
		{"refresh", ActionRefresh, ""},
		{"logout", ActionLogout, ""},
		{"q", ActionQuit, ""},
		{"frobnicate", ActionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.action, got.Action)
			assert.Equal(t, tt.route, got.Route)
		})
	}
}

func TestEnterEmitsParsedCommand(t *testing.T) {
	m := New(80, 20)
	for _, r := range "profile" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(CommandMsg)
	require.True(t, ok)
	assert.Equal(t, ActionNavigate, msg.Action)
	assert.Equal(t, ui.RouteProfile, msg.Route)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input")
}

package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
)

// Model is the help overlay view. Below the key bindings it lists the
// most recent notifications from the local log.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	recent []model.Notification
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetNotifications replaces the notification history shown in the overlay.
func (m *Model) SetNotifications(notes []model.Notification) {
	m.recent = notes
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	sections := []string{title, helpText}
	if len(m.recent) > 0 {
		sections = append(sections, "", theme.TitleStyle.Render("Recent Notifications"))
		var b strings.Builder
		for _, n := range m.recent {
			fmt.Fprintf(&b, "%s %s %s\n",
				theme.MutedStyle.Render(n.CreatedAt.Local().Format("15:04")),
				theme.LevelStyle(n.Level).Render(string(n.Level)),
				n.Message,
			)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Action is what a palette command asks the root model to do.
type Action int

const (
	ActionNone Action = iota
	ActionNavigate
	ActionRefresh
	ActionLogout
	ActionHelp
	ActionQuit
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Action Action
	Route  ui.Route
	Raw    string
}

var routes = map[string]ui.Route{
	"inbox":     ui.RouteInbox,
	"compose":   ui.RouteCompose,
	"contacts":  ui.RouteContacts,
	"history":   ui.RouteHistory,
	"chats":     ui.RouteHistory,
	"accounts":  ui.RouteLinks,
	"links":     ui.RouteLinks,
	"profile":   ui.RouteProfile,
	"dashboard": ui.RouteDashboard,
}

// Suggestions lists every command the palette understands.
func Suggestions() []string {
	return []string{
		"inbox", "compose", "contacts", "history", "accounts",
		"profile", "dashboard", "refresh", "logout", "help", "quit",
	}
}

// Parse turns palette input into a command. Unknown input yields
// ActionNone with Raw set.
func Parse(input string) CommandMsg {
	raw := strings.TrimSpace(input)
	name := strings.ToLower(strings.TrimPrefix(raw, "/"))

	if r, ok := routes[name]; ok {
		return CommandMsg{Action: ActionNavigate, Route: r, Raw: raw}
	}
	switch name {
	case "refresh":
		return CommandMsg{Action: ActionRefresh, Raw: raw}
	case "logout":
		return CommandMsg{Action: ActionLogout, Raw: raw}
	case "help":
		return CommandMsg{Action: ActionHelp, Raw: raw}
	case "q", "quit":
		return CommandMsg{Action: ActionQuit, Raw: raw}
	}
	return CommandMsg{Action: ActionNone, Raw: raw}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Suggestions())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		value := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if value == "" {
			return m, nil
		}
		parsed := Parse(value)
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")
	hint := theme.HelpStyle.Render("tab completes · " + strings.Join(Suggestions(), " "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), hint)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

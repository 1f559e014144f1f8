package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Backend is the subset of the API client the dashboard loads from.
type Backend interface {
	GetProfile(ctx context.Context) (*model.User, error)
	ListLinkedAccounts(ctx context.Context) ([]model.LinkedAccount, error)
	ListChats(ctx context.Context, perPage, page int) (*model.Page[model.Chat], error)
}

// LoadedMsg is sent when the dashboard data has been fetched.
type LoadedMsg struct {
	User     *model.User
	Accounts []model.LinkedAccount
	Chats    []model.Chat
	Err      error
}

// Load fetches the profile, then the linked accounts and the most recent
// chats concurrently. The first failure cancels the other calls. An
// unverified user gets only the profile back.
func Load(b Backend, recent int) tea.Cmd {
	return func() tea.Msg {
		u, err := b.GetProfile(context.Background())
		if err != nil {
			return LoadedMsg{Err: fmt.Errorf("loading profile: %w", err)}
		}
		if !u.Verified() {
			return LoadedMsg{User: u}
		}

		g, ctx := errgroup.WithContext(context.Background())

		msg := LoadedMsg{User: u}
		g.Go(func() error {
			accounts, err := b.ListLinkedAccounts(ctx)
			if err != nil {
				return fmt.Errorf("loading linked accounts: %w", err)
			}
			msg.Accounts = accounts
			return nil
		})
		g.Go(func() error {
			p, err := b.ListChats(ctx, recent, 1)
			if err != nil {
				return fmt.Errorf("loading chats: %w", err)
			}
			msg.Chats = p.Items
			return nil
		})

		if err := g.Wait(); err != nil {
			return LoadedMsg{Err: err}
		}
		return msg
	}
}

// Model is the signed-in landing view: a greeting, the linked accounts
// and the most recent chats.
type Model struct {
	list     list.Model
	backend  Backend
	keys     *keys.KeyMap
	recent   int
	user     *model.User
	accounts []model.LinkedAccount
	senders  map[int]string
	loaded   bool
	width    int
	height   int
}

// New creates the dashboard. recent is how many chats are listed.
func New(b Backend, k *keys.KeyMap, recent, width, height int) Model {
	if recent <= 0 {
		recent = 5
	}
	senders := make(map[int]string)
	l := list.New([]list.Item{}, ItemDelegate{senders: senders}, width, max(height-6, 3))
	l.Title = "Recent chats"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.TitleStyle

	return Model{
		list:    l,
		backend: b,
		keys:    k,
		recent:  recent,
		senders: senders,
		width:   width,
		height:  height,
	}
}

// Init loads the dashboard.
func (m Model) Init() tea.Cmd {
	return Load(m.backend, m.recent)
}

// Reload fetches everything again.
func (m Model) Reload() tea.Cmd {
	return Load(m.backend, m.recent)
}

// User returns the signed-in user once loaded.
func (m Model) User() *model.User { return m.user }

// Accounts returns the linked accounts once loaded.
func (m Model) Accounts() []model.LinkedAccount { return m.accounts }

// Chats returns the recent chats being listed.
func (m Model) Chats() []model.Chat {
	items := m.list.Items()
	out := make([]model.Chat, 0, len(items))
	for _, it := range items {
		if ci, ok := it.(ChatItem); ok {
			out = append(out, ci.Chat)
		}
	}
	return out
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			return m, ui.Failure(msg.Err)
		}
		m.loaded = true
		m.user = msg.User
		m.accounts = msg.Accounts
		clear(m.senders)
		for _, a := range msg.Accounts {
			m.senders[a.ID] = a.Email
		}
		items := make([]list.Item, len(msg.Chats))
		for i, c := range msg.Chats {
			items[i] = ChatItem{Chat: c}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			ci, ok := m.list.SelectedItem().(ChatItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return ui.NavigateMsg{Route: ui.RouteCompose, ChatID: ci.Chat.ID}
			}

		case key.Matches(msg, m.keys.New):
			return m, ui.Navigate(ui.RouteCompose)

		case key.Matches(msg, m.keys.Refresh):
			return m, m.Reload()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading...")
	}

	greeting := "Welcome"
	if m.user != nil {
		name := m.user.FullName()
		if name == "" {
			name = m.user.Username
		}
		greeting = "Welcome, " + name
	}

	var accounts string
	if len(m.accounts) == 0 {
		accounts = theme.HelpStyle.Render("No linked accounts. Press 5 to link one.")
	} else {
		lines := make([]string, len(m.accounts))
		for i, a := range m.accounts {
			lines[i] = theme.ServiceLabelStyle(a.Service).Render(string(a.Service)) + " " + a.DisplayName()
		}
		accounts = strings.Join(lines, "\n")
	}

	chats := m.list.View()
	if len(m.list.Items()) == 0 {
		chats = theme.TitleStyle.Render("Recent chats") + "\n" +
			theme.HelpStyle.Render("No chats yet. Press n to write an email.")
	}

	hints := theme.HelpStyle.Render("enter open chat | n new email | 1-6 switch view | r refresh")

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render(greeting),
		accounts,
		"",
		chats,
		"",
		hints,
	))
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(max(width-4, 10), max(height-6-len(m.accounts), 3))
}

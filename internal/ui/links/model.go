package links

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Backend is the subset of the API client used by the linked accounts view.
type Backend interface {
	ListLinkedAccounts(ctx context.Context) ([]model.LinkedAccount, error)
	RefreshLink(ctx context.Context, service model.Service, accountID int) (*model.Message, error)
	Unlink(ctx context.Context, accountID int) (*model.Message, error)
}

// AccountsMsg carries the freshly loaded linked accounts. The root model
// forwards it to every view that picks an account.
type AccountsMsg struct {
	Accounts []model.LinkedAccount
	Err      error
}

type refreshedMsg struct {
	resp *model.Message
	err  error
}

type unlinkedMsg struct {
	resp *model.Message
	err  error
}

// LinkURL returns the web page that starts the OAuth flow for service.
// baseURL is the API root, e.g. https://host/api.
func LinkURL(baseURL string, service model.Service) string {
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	return root + "/link/" + string(service)
}

// Load returns a command that lists the linked accounts.
func Load(b Backend) tea.Cmd {
	return func() tea.Msg {
		accounts, err := b.ListLinkedAccounts(context.Background())
		return AccountsMsg{Accounts: accounts, Err: err}
	}
}

// Model is the Bubble Tea model for the linked accounts manager.
type Model struct {
	backend     Backend
	keys        *keys.KeyMap
	baseURL     string
	accounts    []model.LinkedAccount
	loaded      bool
	selectedIdx int
	confirming  bool
	confirm     *bool
	confirmForm *huh.Form
	width       int
	height      int
}

// New creates the linked accounts view.
func New(b Backend, k *keys.KeyMap, baseURL string, width, height int) Model {
	return Model{
		backend: b,
		keys:    k,
		baseURL: baseURL,
		confirm: new(bool),
		width:   width,
		height:  height,
	}
}

// Init loads the accounts.
func (m Model) Init() tea.Cmd {
	return Load(m.backend)
}

// Idle reports whether no confirmation is open.
func (m Model) Idle() bool { return !m.confirming }

// Accounts returns the accounts being shown.
func (m Model) Accounts() []model.LinkedAccount {
	return m.accounts
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case AccountsMsg:
		if msg.Err != nil {
			return m, ui.Failure(msg.Err)
		}
		m.accounts = msg.Accounts
		m.loaded = true
		if m.selectedIdx >= len(m.accounts) {
			m.selectedIdx = max(len(m.accounts)-1, 0)
		}
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m, tea.Batch(ui.Success(msg.resp.Message), Load(m.backend))

	case unlinkedMsg:
		m.confirming = false
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m, tea.Batch(ui.Success(msg.resp.Message), Load(m.backend))

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.handleKey(msg)
	}

	if m.confirming {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, ui.Navigate(ui.RouteDashboard)

	case key.Matches(msg, m.keys.Down):
		if len(m.accounts) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.accounts)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.accounts) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.accounts) - 1
			}
		}

	case key.Matches(msg, m.keys.Refresh):
		if len(m.accounts) == 0 {
			return m, Load(m.backend)
		}
		return m, m.refresh(m.accounts[m.selectedIdx])

	case key.Matches(msg, m.keys.Delete):
		if len(m.accounts) == 0 {
			return m, nil
		}
		*m.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.confirming = true
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Unlink Account").
				Description(fmt.Sprintf("Are you sure you want to unlink %s?",
					m.accounts[m.selectedIdx].Email)).
				Affirmative("Unlink").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(60)
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if *m.confirm {
			return m, m.unlink(m.accounts[m.selectedIdx].ID)
		}
		m.confirming = false
		return m, nil
	case huh.StateAborted:
		m.confirming = false
		return m, nil
	}
	return m, cmd
}

func (m Model) refresh(a model.LinkedAccount) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.RefreshLink(context.Background(), a.Service, a.ID)
		return refreshedMsg{resp: resp, err: err}
	}
}

func (m Model) unlink(id int) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.Unlink(context.Background(), id)
		return unlinkedMsg{resp: resp, err: err}
	}
}

// View renders the account list.
func (m Model) View() string {
	if m.confirming && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Linked Accounts"))
	b.WriteString("\n")

	switch {
	case !m.loaded:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
	case len(m.accounts) == 0:
		b.WriteString(theme.HelpStyle.Render("No linked accounts."))
	default:
		for i, a := range m.accounts {
			label := fmt.Sprintf("%s %s",
				theme.ServiceLabelStyle(a.Service).Render(fmt.Sprintf("%-9s", a.Service)),
				a.DisplayName(),
			)
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render("Link a new account in your browser:"))
	b.WriteString("\n")
	for _, s := range []model.Service{model.ServiceGoogle, model.ServiceMicrosoft} {
		b.WriteString("  " + LinkURL(m.baseURL, s) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("r refresh token | d unlink | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

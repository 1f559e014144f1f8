package history

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

// Backend is the subset of the API client used by the chat history.
type Backend interface {
	ListChats(ctx context.Context, perPage, page int) (*model.Page[model.Chat], error)
	RenameChat(ctx context.Context, id int, name string) (*model.Message, error)
	DeleteChat(ctx context.Context, id int) (*model.Message, error)
}

// Untitled labels a chat that was never named.
const Untitled = "Untitled chat"

type historyMode int

const (
	modeList historyMode = iota
	modeRename
	modeConfirmDelete
)

type pageLoadedMsg struct {
	page *model.Page[model.Chat]
	err  error
}

type renamedMsg struct {
	resp *model.Message
	err  error
}

type deletedMsg struct {
	resp *model.Message
	err  error
}

// Model lists past chats with rename, delete and reopen.
type Model struct {
	mode        historyMode
	backend     Backend
	keys        *keys.KeyMap
	perPage     int
	page        model.Page[model.Chat]
	loading     bool
	pending     bool
	selectedIdx int
	name        *string
	confirm     *bool
	form        *huh.Form
	width       int
	height      int
}

// New creates the chat history view.
func New(b Backend, k *keys.KeyMap, perPage, width, height int) Model {
	if perPage <= 0 {
		perPage = 10
	}
	return Model{
		backend: b,
		keys:    k,
		perPage: perPage,
		page:    model.Page[model.Chat]{Page: 1},
		name:    new(string),
		confirm: new(bool),
		width:   width,
		height:  height,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPage(1)
}

// Reload fetches the page being shown again.
func (m Model) Reload() tea.Cmd {
	return m.loadPage(m.page.Page)
}

// Chats returns the chats on the current page.
func (m Model) Chats() []model.Chat { return m.page.Items }

// Idle reports whether no form has the keyboard.
func (m Model) Idle() bool { return m.mode == modeList }

// CurrentPage returns the page number being shown.
func (m Model) CurrentPage() int { return m.page.Page }

func (m Model) loadPage(page int) tea.Cmd {
	b, perPage := m.backend, m.perPage
	return func() tea.Msg {
		p, err := b.ListChats(context.Background(), perPage, page)
		return pageLoadedMsg{page: p, err: err}
	}
}

func (m Model) selected() (model.Chat, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.page.Items) {
		return model.Chat{}, false
	}
	return m.page.Items[m.selectedIdx], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		m.page = *msg.page
		if m.page.Page == 0 {
			m.page.Page = 1
		}
		if m.selectedIdx >= len(m.page.Items) {
			m.selectedIdx = max(len(m.page.Items)-1, 0)
		}
		return m, nil

	case renamedMsg:
		m.pending = false
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m, tea.Batch(ui.Success(ackText(msg.resp, "Chat renamed")), m.Reload())

	case deletedMsg:
		m.pending = false
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		page := m.page.Page
		if len(m.page.Items) == 1 && page > 1 {
			page--
		}
		return m, tea.Batch(ui.Success(ackText(msg.resp, "Chat deleted")), m.loadPage(page))

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}
	return m, nil
}

func ackText(resp *model.Message, fallback string) string {
	if resp == nil || resp.Message == "" {
		return fallback
	}
	return resp.Message
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.page.Items

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, ui.Navigate(ui.RouteDashboard)

	case key.Matches(msg, m.keys.Down):
		if len(items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(items)
		}

	case key.Matches(msg, m.keys.Up):
		if len(items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(items) - 1
			}
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.page.HasNext && !m.loading {
			m.loading = true
			return m, m.loadPage(m.page.Page + 1)
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.page.HasPrev && !m.loading {
			m.loading = true
			return m, m.loadPage(m.page.Page - 1)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Reload()

	case key.Matches(msg, m.keys.Select):
		if c, ok := m.selected(); ok {
			id := c.ID
			return m, func() tea.Msg {
				return ui.NavigateMsg{Route: ui.RouteCompose, ChatID: id}
			}
		}

	case key.Matches(msg, m.keys.Edit):
		if c, ok := m.selected(); ok {
			*m.name = c.Name
			m.form = m.buildRenameForm()
			m.mode = modeRename
			return m, m.form.Init()
		}

	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.selected(); ok {
			*m.confirm = false
			m.form = m.buildConfirmForm(c)
			m.mode = modeConfirmDelete
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) buildRenameForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chat name").
				Value(m.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(60)
}

func (m Model) buildConfirmForm(c model.Chat) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", label(c))).
				Description("The chat and its messages will be removed.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(60)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.pending {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		c, ok := m.selected()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		if m.mode == modeRename {
			m.pending = true
			return m, m.rename(c.ID, strings.TrimSpace(*m.name))
		}
		if !*m.confirm {
			m.mode = modeList
			return m, nil
		}
		m.pending = true
		return m, m.delete(c.ID)
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) rename(id int, name string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.RenameChat(context.Background(), id, name)
		return renamedMsg{resp: resp, err: err}
	}
}

func (m Model) delete(id int) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		resp, err := b.DeleteChat(context.Background(), id)
		return deletedMsg{resp: resp, err: err}
	}
}

func label(c model.Chat) string {
	if strings.TrimSpace(c.Name) == "" {
		return Untitled
	}
	return c.Name
}

// View renders the chat history.
func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Chat History"))
	b.WriteString("\n")

	if len(m.page.Items) == 0 {
		b.WriteString(theme.HelpStyle.Render("No chats yet."))
	}
	for i, c := range m.page.Items {
		line := label(c)
		if c.IsSent {
			line += " " + lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("(sent)")
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.page.Pages > 1 {
		b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("Page %d of %d", m.page.Page, m.page.Pages)))
		b.WriteString("\n")
	}
	b.WriteString(theme.HelpStyle.Render("enter open | e rename | d delete | [ ] page | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

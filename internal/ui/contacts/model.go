package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Backend is the subset of the API client used by the contact manager.
type Backend interface {
	ListContacts(ctx context.Context, perPage, page int) (*model.Page[model.Contact], error)
	GetContact(ctx context.Context, id int) (*model.Contact, error)
	CreateContact(ctx context.Context, in model.ContactInput) (*model.Message, error)
	UpdateContact(ctx context.Context, id int, in model.ContactInput) (*model.Message, error)
	DeleteContact(ctx context.Context, id int) (*model.Message, error)
}

type contactMode int

const (
	modeList contactMode = iota
	modeView
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	model.ContactInput
	confirm bool
}

type pageLoadedMsg struct {
	page *model.Page[model.Contact]
	err  error
}

type contactLoadedMsg struct {
	contact *model.Contact
	edit    bool
	err     error
}

type savedMsg struct {
	created bool
	err     error
}

type deletedMsg struct{ err error }

// Model is the Bubble Tea model for the paginated contact list.
type Model struct {
	mode        contactMode
	backend     Backend
	keys        *keys.KeyMap
	perPage     int
	page        model.Page[model.Contact]
	loading     bool
	selectedIdx int
	viewing     *model.Contact
	editingID   int
	isNew       bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	fieldErrs   map[string]string
	saving      bool
	width       int
	height      int
}

// New creates a new contact manager model.
func New(b Backend, k *keys.KeyMap, perPage, width, height int) Model {
	if perPage <= 0 {
		perPage = 10
	}
	return Model{
		mode:    modeList,
		backend: b,
		keys:    k,
		perPage: perPage,
		page:    model.Page[model.Contact]{Page: 1},
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPage(1)
}

// Contacts returns the contacts on the current page.
func (m Model) Contacts() []model.Contact {
	return m.page.Items
}

// Idle reports whether no form has the keyboard.
func (m Model) Idle() bool { return m.mode == modeList || m.mode == modeView }

// CurrentPage returns the page number being shown.
func (m Model) CurrentPage() int {
	return m.page.Page
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

	case contactLoadedMsg:
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		if msg.edit {
			return m.openForm(msg.contact)
		}
		m.viewing = msg.contact
		m.mode = modeView
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.fieldErrs = api.FieldErrors(msg.err)
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.mode = modeList
		m.fieldErrs = nil
		text := "Contact updated"
		if msg.created {
			text = "Contact added"
		}
		return m, tea.Batch(ui.Success(text), m.loadPage(m.page.Page))

	case deletedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		page := m.page.Page
		if len(m.page.Items) == 1 && page > 1 {
			page--
		}
		return m, tea.Batch(ui.Success("Contact deleted"), m.loadPage(page))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeView:
		if key.Matches(msg, m.keys.Back) {
			m.mode = modeList
			m.viewing = nil
			return m, nil
		}
		if key.Matches(msg, m.keys.Edit) && m.viewing != nil {
			return m.openForm(m.viewing)
		}
		return m, nil
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
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
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.page.HasNext && !m.loading {
			m.loading = true
			return m, m.loadPage(m.page.Page + 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.page.HasPrev && !m.loading {
			m.loading = true
			return m, m.loadPage(m.page.Page - 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadPage(m.page.Page)

	case key.Matches(msg, m.keys.Select):
		if len(items) == 0 {
			return m, nil
		}
		return m, m.fetchContact(items[m.selectedIdx].ID, false)

	case key.Matches(msg, m.keys.New):
		return m.openForm(nil)

	case key.Matches(msg, m.keys.Edit):
		if len(items) == 0 {
			return m, nil
		}
		return m, m.fetchContact(items[m.selectedIdx].ID, true)

	case key.Matches(msg, m.keys.Delete):
		if len(items) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

// openForm shows the create form when c is nil and the edit form otherwise.
func (m Model) openForm(c *model.Contact) (Model, tea.Cmd) {
	m.fieldErrs = nil
	if c == nil {
		m.isNew = true
		m.editingID = 0
		m.fb.ContactInput = model.ContactInput{}
	} else {
		m.isNew = false
		m.editingID = c.ID
		m.fb.ContactInput = model.ContactInputFrom(*c)
	}
	m.form = m.buildForm()
	m.mode = modeForm
	return m, m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Placeholder("name@example.com").
				Value(&m.fb.Email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("a valid email is required")
					}
					return nil
				}),
			huh.NewInput().Title("Phone code").Placeholder("+1").Value(&m.fb.PhoneCode),
			huh.NewInput().Title("Phone number").Value(&m.fb.PhoneNumber),
		).Title("Profile"),
		huh.NewGroup(
			huh.NewInput().Title("Company").Value(&m.fb.Company),
			huh.NewInput().Title("Work Title").Value(&m.fb.WorkTitle),
		).Title("Company"),
		huh.NewGroup(
			huh.NewInput().Title("College").Value(&m.fb.College),
			huh.NewInput().Title("Major").Value(&m.fb.Major),
		).Title("Education"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.page.Items) {
		name = m.page.Items[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Are you sure? Delete %q", name)).
				Description("You will not be able to recover this contact.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.saving {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.saving = true
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm && m.selectedIdx < len(m.page.Items) {
			return m, m.delete(m.page.Items[m.selectedIdx].ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the contact manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	case modeView:
		return m.viewContact()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Contacts (%d)", m.page.Total)))
	b.WriteString("\n")

	if len(m.page.Items) == 0 {
		b.WriteString(theme.HelpStyle.Render("No contacts found"))
	} else {
		for i, c := range m.page.Items {
			label := fmt.Sprintf("%-24s %s", c.Name, theme.MutedStyle.Render(c.Email))
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	pages := max(m.page.Pages, 1)
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("Page %d of %d", m.page.Page, pages)))
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"enter view | n new | e edit | d delete | [ ] page | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewContact() string {
	c := m.viewing
	if c == nil {
		return ""
	}
	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf("%s %s\n", theme.MutedStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("View Contact"))
	b.WriteString("\n")
	b.WriteString(row("Name", c.Name))
	b.WriteString(row("Email", c.Email))
	b.WriteString(row("Phone", strings.TrimSpace(c.PhoneCode+" "+c.PhoneNumber)))
	b.WriteString(row("Company", c.Company))
	b.WriteString(row("Work Title", c.WorkTitle))
	b.WriteString(row("College", c.College))
	b.WriteString(row("Major", c.Major))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("e edit | esc back"))

	return theme.PanelStyle.Width(m.formWidth()).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	title := "Edit Contact"
	if m.mode == modeConfirmDelete {
		title = "Delete Contact"
	} else if m.isNew {
		title = "Add Contact"
	}

	var errs strings.Builder
	for field, text := range m.fieldErrs {
		errs.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(field + ": " + text))
		errs.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, theme.TitleStyle.Render(title), errs.String(), f.View()),
	)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) loadPage(page int) tea.Cmd {
	b, perPage := m.backend, m.perPage
	return func() tea.Msg {
		p, err := b.ListContacts(context.Background(), perPage, page)
		return pageLoadedMsg{page: p, err: err}
	}
}

func (m Model) fetchContact(id int, edit bool) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		c, err := b.GetContact(context.Background(), id)
		return contactLoadedMsg{contact: c, edit: edit, err: err}
	}
}

func (m Model) save() tea.Cmd {
	b := m.backend
	in := trimInput(m.fb.ContactInput)
	editID := m.editingID
	isNew := m.isNew
	return func() tea.Msg {
		if isNew {
			_, err := b.CreateContact(context.Background(), in)
			return savedMsg{created: true, err: err}
		}
		_, err := b.UpdateContact(context.Background(), editID, in)
		return savedMsg{err: err}
	}
}

func (m Model) delete(id int) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		_, err := b.DeleteContact(context.Background(), id)
		return deletedMsg{err: err}
	}
}

func trimInput(in model.ContactInput) model.ContactInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneCode = strings.TrimSpace(in.PhoneCode)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Company = strings.TrimSpace(in.Company)
	in.WorkTitle = strings.TrimSpace(in.WorkTitle)
	in.College = strings.TrimSpace(in.College)
	in.Major = strings.TrimSpace(in.Major)
	return in
}

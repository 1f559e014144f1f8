package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	composer "github.com/nhle/easymail/internal/compose"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// revealFrame is the shortest interval between two reveal redraws.
const revealFrame = 16 * time.Millisecond

// SentMsg reports that the chat's email was delivered.
type SentMsg struct{ ChatID int }

type stage int

const (
	stageSetup stage = iota
	stageChat
	stageParaphrase
	stageConfirm
	stageDetails
)

type formBindings struct {
	oauthID     int
	to          string
	cc          string
	bcc         string
	tone        string
	length      string
	instruction string

	target    model.ParaphraseTarget
	selection string
	apply     bool
}

type generatedMsg struct {
	fresh bool
	resp  *model.GenerateResponse
	err   error
}

type revealTickMsg struct{ gen int }

type sentMsg struct {
	chatID int
	resp   *model.Message
	err    error
}

type proposedMsg struct {
	p   *composer.Proposal
	err error
}

type committedMsg struct {
	out *model.EmailOutput
	err error
}

type restoredMsg struct {
	chatID int
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// Model is the compose view: a setup form for the first instruction,
// then a chat transcript with follow-up input.
type Model struct {
	flow      *composer.Flow
	keys      *keys.KeyMap
	accounts  []model.LinkedAccount
	interval  time.Duration
	exportDir string

	stage       stage
	fb          *formBindings
	form        *huh.Form
	paraForm    *huh.Form
	confirmForm *huh.Form
	detailsForm *huh.Form
	input       textarea.Model
	viewport    viewport.Model

	busy      bool
	reveal    *composer.Reveal
	revealGen int

	width  int
	height int
}

// New creates the compose view around flow. interval is the delay per
// revealed character and exportDir receives .eml exports.
func New(flow *composer.Flow, k *keys.KeyMap, interval time.Duration, exportDir string, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask for changes, or type /help"
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 2000

	s := flow.Settings()
	m := Model{
		flow:      flow,
		keys:      k,
		interval:  interval,
		exportDir: exportDir,
		fb:        &formBindings{tone: s.Tone, length: s.Length, target: model.TargetBody},
		input:     ta,
		viewport:  viewport.New(max(width-4, 10), 4),
	}
	m.SetSize(width, height)
	m.form = m.buildSetupForm()
	return m
}

// Init starts the setup form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Flow returns the underlying chat flow.
func (m Model) Flow() *composer.Flow { return m.flow }

// Busy reports whether a backend call is in flight.
func (m Model) Busy() bool { return m.busy }

// Revealing reports whether the latest email is still being typed out.
func (m Model) Revealing() bool { return m.reveal != nil && !m.reveal.Done() }

// Idle reports whether no form is open over the chat.
func (m Model) Idle() bool { return m.stage == stageChat }

// CanSend reports whether the send action is offered.
func (m Model) CanSend() bool {
	return m.stage == stageChat && !m.busy && !m.Revealing() &&
		m.flow.ChatID() > 0 && !m.flow.Sent()
}

// SetAccounts replaces the accounts offered as the sender. The first
// account is preselected when none is chosen.
func (m *Model) SetAccounts(accounts []model.LinkedAccount) {
	m.accounts = accounts
	if m.fb.oauthID == 0 && len(accounts) > 0 {
		m.fb.oauthID = accounts[0].ID
	}
	if m.stage == stageSetup {
		m.form = m.buildSetupForm()
	}
}

// NewChat drops the active chat and shows the setup form again.
func (m *Model) NewChat() tea.Cmd {
	m.flow.Reset()
	m.reveal = nil
	m.revealGen++
	m.busy = false
	m.fb.instruction = ""
	m.input.Reset()
	m.stage = stageSetup
	m.form = m.buildSetupForm()
	m.refreshViewport()
	return m.form.Init()
}

// Open reloads a chat from history.
func (m *Model) Open(chatID int) tea.Cmd {
	m.busy = true
	m.reveal = nil
	m.revealGen++
	m.stage = stageChat
	flow := m.flow
	return func() tea.Msg {
		err := flow.Restore(context.Background(), chatID)
		return restoredMsg{chatID: chatID, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case generatedMsg:
		return m.handleGenerated(msg)

	case revealTickMsg:
		if msg.gen != m.revealGen || m.reveal == nil {
			return m, nil
		}
		done := m.reveal.Step(m.revealStep())
		m.refreshViewport()
		if done {
			return m, nil
		}
		return m, m.tick()

	case sentMsg:
		m.busy = false
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		m.input.Blur()
		text := "Email sent"
		if msg.resp != nil && msg.resp.Message != "" {
			text = msg.resp.Message
		}
		chatID := msg.chatID
		return m, tea.Batch(ui.Success(text), func() tea.Msg { return SentMsg{ChatID: chatID} })

	case proposedMsg:
		m.busy = false
		if msg.err != nil {
			m.stage = stageChat
			return m, ui.Failure(msg.err)
		}
		m.fb.apply = true
		m.confirmForm = m.buildConfirmForm(msg.p)
		m.stage = stageConfirm
		return m, m.confirmForm.Init()

	case committedMsg:
		m.busy = false
		m.stage = stageChat
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		m.refreshViewport()
		return m, ui.Success("Paraphrase applied")

	case restoredMsg:
		m.busy = false
		if errors.Is(msg.err, composer.ErrEmptyChat) {
			m.stage = stageSetup
			return m, tea.Batch(ui.Info(ui.ErrorText(msg.err)), ui.Navigate(ui.RouteHistory))
		}
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		m.syncBindings()
		m.refreshViewport()
		if m.flow.Sent() {
			m.input.Blur()
			return m, ui.Info(ui.ErrorText(composer.ErrAlreadySent))
		}
		return m, m.input.Focus()

	case exportedMsg:
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m, ui.Success("Draft exported to " + msg.path)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActive(msg)
}

func (m Model) handleGenerated(msg generatedMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if msg.fresh {
			m.flow.Reset()
			m.stage = stageSetup
			m.form = m.buildSetupForm()
			m.refreshViewport()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.refreshViewport()
		return m, ui.Failure(msg.err)
	}

	m.revealGen++
	m.reveal = composer.NewReveal(msg.resp.Output.Subject, msg.resp.Output.Body)
	if m.interval <= 0 {
		m.reveal.Finish()
	}
	m.refreshViewport()
	focus := m.input.Focus()
	if m.reveal.Done() {
		return m, focus
	}
	return m, tea.Batch(focus, m.tick())
}

func (m Model) tick() tea.Cmd {
	gen := m.revealGen
	return tea.Tick(max(m.interval, revealFrame), func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// revealStep is the number of characters shown per redraw.
func (m Model) revealStep() int {
	if m.interval <= 0 || m.interval >= revealFrame {
		return 1
	}
	return int(revealFrame / m.interval)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.stage {
	case stageSetup:
		if key.Matches(msg, m.keys.Back) {
			return m, ui.Navigate(ui.RouteDashboard)
		}
		return m.updateSetup(msg)
	case stageParaphrase:
		return m.updateParaphrase(msg)
	case stageConfirm:
		return m.updateConfirm(msg)
	case stageDetails:
		return m.updateDetails(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.Revealing() {
			m.reveal.Finish()
			m.refreshViewport()
			return m, nil
		}
		return m, ui.Navigate(ui.RouteDashboard)

	case key.Matches(msg, m.keys.NewChat):
		if m.busy {
			return m, nil
		}
		cmd := m.NewChat()
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		if !m.CanSend() {
			return m, nil
		}
		m.busy = true
		return m, m.send()

	case key.Matches(msg, m.keys.Paraphrase):
		if m.busy || m.Revealing() || m.flow.Sent() {
			return m, nil
		}
		if _, ok := m.flow.Transcript().LastEmail(); !ok {
			return m, nil
		}
		m.fb.selection = ""
		m.paraForm = m.buildParaphraseForm()
		m.stage = stageParaphrase
		return m, m.paraForm.Init()

	case key.Matches(msg, m.keys.Export):
		return m, m.export()

	case key.Matches(msg, m.keys.Details):
		if m.busy || m.Revealing() || m.flow.Sent() || m.flow.ChatID() == 0 {
			return m, nil
		}
		m.syncBindings()
		m.detailsForm = m.buildDetailsForm()
		m.stage = stageDetails
		return m, m.detailsForm.Init()

	case msg.Type == tea.KeyEnter:
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput runs a slash command locally or sends a follow-up
// instruction for the active chat.
func (m Model) submitInput() (Model, tea.Cmd) {
	if m.busy || m.Revealing() {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	if _, ok := m.flow.Command(text); ok {
		s := m.flow.Settings()
		m.fb.tone, m.fb.length = s.Tone, s.Length
		m.refreshViewport()
		return m, nil
	}

	if m.flow.Sent() {
		return m, ui.Failure(composer.ErrAlreadySent)
	}

	m.busy = true
	m.refreshViewport()
	flow := m.flow
	return m, func() tea.Msg {
		resp, err := flow.Modify(context.Background(), text)
		return generatedMsg{resp: resp, err: err}
	}
}

func (m Model) updateSetup(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.generate()
	case huh.StateAborted:
		m.form = m.buildSetupForm()
		return m, ui.Navigate(ui.RouteDashboard)
	}
	return m, cmd
}

// generate starts a fresh chat from the setup form.
func (m Model) generate() (Model, tea.Cmd) {
	d := composer.Draft{
		Instruction: strings.TrimSpace(m.fb.instruction),
		Recipients:  composer.ParseGroup(m.fb.to, m.fb.cc, m.fb.bcc),
		Settings:    composer.NewSettings(m.fb.tone, m.fb.length),
		OAuthID:     m.fb.oauthID,
	}
	m.stage = stageChat
	m.busy = true
	m.refreshViewport()
	flow := m.flow
	return m, func() tea.Msg {
		resp, err := flow.Fresh(context.Background(), d)
		return generatedMsg{fresh: true, resp: resp, err: err}
	}
}

func (m Model) send() tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		resp, err := flow.Send(context.Background())
		return sentMsg{chatID: flow.ChatID(), resp: resp, err: err}
	}
}

func (m Model) updateParaphrase(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	mdl, cmd := m.paraForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.paraForm = f
	}
	switch m.paraForm.State {
	case huh.StateCompleted:
		span, err := m.selectedSpan()
		if err != nil {
			m.stage = stageChat
			return m, ui.Failure(err)
		}
		m.busy = true
		flow := m.flow
		return m, func() tea.Msg {
			p, err := flow.Propose(context.Background(), span)
			return proposedMsg{p: p, err: err}
		}
	case huh.StateAborted:
		m.stage = stageChat
		return m, nil
	}
	return m, cmd
}

// selectedSpan locates the typed selection in the latest email.
func (m Model) selectedSpan() (composer.Span, error) {
	email, ok := m.flow.Transcript().LastEmail()
	if !ok {
		return composer.Span{}, composer.ErrNoChat
	}
	full := email.Body
	if m.fb.target == model.TargetSubject {
		full = email.Subject
	}
	return composer.NewSpan(m.fb.target, full, m.fb.selection, 0)
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if !m.fb.apply {
			m.flow.Cancel()
			m.stage = stageChat
			return m, nil
		}
		m.busy = true
		flow := m.flow
		return m, func() tea.Msg {
			out, err := flow.Commit(context.Background())
			return committedMsg{out: out, err: err}
		}
	case huh.StateAborted:
		m.flow.Cancel()
		m.stage = stageChat
		return m, nil
	}
	return m, cmd
}

// updateDetails applies edited recipients, sender and settings to the
// active chat. They take effect with the next instruction or send.
func (m Model) updateDetails(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.detailsForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.detailsForm = f
	}
	switch m.detailsForm.State {
	case huh.StateCompleted:
		m.flow.SetOAuthID(m.fb.oauthID)
		m.flow.SetRecipients(composer.ParseGroup(m.fb.to, m.fb.cc, m.fb.bcc))
		m.flow.SetSettings(composer.NewSettings(m.fb.tone, m.fb.length))
		m.stage = stageChat
		return m, tea.Batch(m.input.Focus(), ui.Info("Draft details updated"))
	case huh.StateAborted:
		m.syncBindings()
		m.stage = stageChat
		return m, m.input.Focus()
	}
	return m, cmd
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	switch m.stage {
	case stageSetup:
		return m.updateSetup(msg)
	case stageParaphrase:
		return m.updateParaphrase(msg)
	case stageConfirm:
		return m.updateConfirm(msg)
	case stageDetails:
		return m.updateDetails(msg)
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) export() tea.Cmd {
	email, ok := m.flow.Transcript().LastEmail()
	if !ok {
		return ui.Failure(composer.ErrNoChat)
	}
	g := m.flow.Recipients()
	e := composer.Export{
		From:    m.accountEmail(m.flow.OAuthID()),
		To:      addresses(g.To),
		CC:      addresses(g.CC),
		BCC:     addresses(g.BCC),
		Subject: email.Subject,
		Body:    email.Body,
	}
	dir := m.exportDir
	return func() tea.Msg {
		path, err := composer.ExportEML(dir, e)
		return exportedMsg{path: path, err: err}
	}
}

// addresses keeps the free-form recipients. Contact ids have no address
// on the client.
func addresses(rs []model.Recipient) []string {
	var out []string
	for _, r := range rs {
		if r.Email != "" {
			out = append(out, r.Email)
		}
	}
	return out
}

func (m Model) accountEmail(id int) string {
	for _, a := range m.accounts {
		if a.ID == id {
			return a.Email
		}
	}
	return ""
}

// syncBindings copies the restored chat state into the form bindings.
func (m *Model) syncBindings() {
	g := m.flow.Recipients()
	s := m.flow.Settings()
	m.fb.oauthID = m.flow.OAuthID()
	m.fb.to = composer.FormatRecipients(g.To)
	m.fb.cc = composer.FormatRecipients(g.CC)
	m.fb.bcc = composer.FormatRecipients(g.BCC)
	m.fb.tone, m.fb.length = s.Tone, s.Length
	m.fb.instruction = m.flow.Instruction()
}

// recipientFields are the sender and recipient inputs shared by the
// setup and details forms.
func (m Model) recipientFields() []huh.Field {
	accountOpts := make([]huh.Option[int], 0, len(m.accounts))
	for _, a := range m.accounts {
		accountOpts = append(accountOpts, huh.NewOption(a.DisplayName(), a.ID))
	}
	if len(accountOpts) == 0 {
		accountOpts = append(accountOpts, huh.NewOption("No linked accounts", 0))
	}

	return []huh.Field{
		huh.NewSelect[int]().
			Title("From").
			Options(accountOpts...).
			Value(&m.fb.oauthID).
			Validate(func(id int) error {
				if id <= 0 {
					return ui.UserError(composer.ErrNoAccount)
				}
				return nil
			}),
		huh.NewInput().
			Title("To").
			Description("Contact ids or addresses, comma separated").
			Value(&m.fb.to).
			Validate(func(s string) error {
				if len(composer.ParseRecipients(s)) == 0 {
					return ui.UserError(composer.ErrNoRecipients)
				}
				return nil
			}),
		huh.NewInput().Title("Cc").Value(&m.fb.cc),
		huh.NewInput().Title("Bcc").Value(&m.fb.bcc),
	}
}

func (m Model) settingFields() []huh.Field {
	return []huh.Field{
		huh.NewSelect[string]().
			Title("Tone").
			Options(huh.NewOptions(composer.Tones...)...).
			Value(&m.fb.tone),
		huh.NewSelect[string]().
			Title("Length").
			Options(huh.NewOptions(composer.Lengths...)...).
			Value(&m.fb.length),
	}
}

func (m Model) buildDetailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(m.recipientFields()...).Title("Recipients"),
		huh.NewGroup(m.settingFields()...).Title("Settings"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildSetupForm() *huh.Form {
	email := append(m.settingFields(),
		huh.NewText().
			Title("Instruction").
			Placeholder("Describe the email you want").
			Value(&m.fb.instruction).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return ui.UserError(composer.ErrMissingPrompt)
				}
				return nil
			}),
	)

	return huh.NewForm(
		huh.NewGroup(m.recipientFields()...).Title("Recipients"),
		huh.NewGroup(email...).Title("Email"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildParaphraseForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.ParaphraseTarget]().
				Title("Rewrite in").
				Options(
					huh.NewOption("Body", model.TargetBody),
					huh.NewOption("Subject", model.TargetSubject),
				).
				Value(&m.fb.target),
			huh.NewText().
				Title("Text to rewrite").
				Description("Paste the exact passage from the email").
				Value(&m.fb.selection).
				Validate(func(string) error {
					_, err := m.selectedSpan()
					return err
				}),
		).Title("Paraphrase"),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(p *composer.Proposal) *huh.Form {
	desc := fmt.Sprintf("Old:\n%s\n\nNew:\n%s", p.Old, p.New)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Apply this paraphrase?").
				Description(desc).
				Affirmative("Apply").
				Negative("Discard").
				Value(&m.fb.apply),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int  { return min(max(m.width-4, 20), 80) }
func (m Model) formHeight() int { return max(m.height-2, 8) }

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	entries := m.flow.Transcript().Entries()
	if len(entries) == 0 {
		return theme.MutedStyle.Italic(true).Render("Nothing generated yet.")
	}

	last := -1
	for i, e := range entries {
		if e.Role == composer.RoleEmail {
			last = i
		}
	}

	content := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	var sections []string
	for i, e := range entries {
		switch e.Role {
		case composer.RoleUser:
			sections = append(sections, theme.ChatRoleStyle("user").Render("You:"), content.Render(e.Text))
		case composer.RoleBot:
			sections = append(sections, theme.ChatRoleStyle("bot").Render("Assistant:"), content.Render(e.Text))
		case composer.RoleEmail:
			subject, body := e.Subject, e.Body
			if i == last && m.Revealing() {
				subject, body = m.reveal.Subject(), m.reveal.Body()
			}
			sections = append(sections,
				theme.ChatRoleStyle("email").Render("Subject: ")+content.Render(subject),
				content.Render(body))
		}
		sections = append(sections, "")
	}
	if m.busy {
		sections = append(sections, theme.MutedStyle.Italic(true).Render("Generating..."))
	}
	return strings.Join(sections, "\n")
}

// View renders the compose view.
func (m Model) View() string {
	switch m.stage {
	case stageSetup:
		return m.viewForm("New Email", m.form)
	case stageParaphrase:
		return m.viewForm("Paraphrase", m.paraForm)
	case stageConfirm:
		return m.viewForm("Paraphrase", m.confirmForm)
	case stageDetails:
		return m.viewForm("Draft Details", m.detailsForm)
	}

	s := m.flow.Settings()
	info := fmt.Sprintf("from %s | tone %s | length %s",
		m.accountEmail(m.flow.OAuthID()), s.Tone, s.Length)
	sep := lipgloss.NewStyle().Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", min(max(m.width-6, 1), 80)))

	var bottom string
	switch {
	case m.flow.Sent():
		bottom = theme.MutedStyle.Render("This email has already been sent.")
	default:
		bottom = m.input.View()
	}

	hints := "enter send instruction | ctrl+p paraphrase | ctrl+o details | ctrl+e export | ctrl+n new chat | esc back"
	if m.CanSend() {
		hints = "ctrl+s send email | " + hints
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Compose"),
		theme.MutedStyle.Render(info),
		m.viewport.View(),
		sep,
		bottom,
		theme.HelpStyle.Render(hints),
	)
	return theme.PanelStyle.Width(max(m.width-4, 10)).Render(content)
}

func (m Model) viewForm(title string, f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(
		theme.TitleStyle.Render(title) + "\n" + f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-6, 10))
	m.viewport.Width = max(width-6, 10)
	m.viewport.Height = max(height-12, 4)
}

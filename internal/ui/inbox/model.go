package inbox

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/countdown"
	mailbox "github.com/nhle/easymail/internal/inbox"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/internal/sync"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Backend is the subset of the API client used by the inbox viewer.
type Backend interface {
	mailbox.Lister
	sync.FolderLister
	GetMessage(ctx context.Context, service model.Service, accountID int, messageID string) (*model.MessageDetail, error)
	MessageAction(ctx context.Context, service model.Service, accountID int, messageID string, action model.MessageAction) (*model.Message, error)
	ReplyMessage(ctx context.Context, service model.Service, accountID int, messageID, htmlBody string) (*model.Message, error)
	SmartReply(ctx context.Context, req model.SmartReplyRequest) (*model.SmartReplyResponse, error)
}

// Tracker follows the active account in the background. *sync.Poller
// satisfies it.
type Tracker interface {
	SetTarget(t sync.Target)
	ClearTarget()
}

type inboxMode int

const (
	modeList inboxMode = iota
	modeSearch
	modeRead
	modeReply
	modeSmart
	modeConfirmDelete
)

type formBindings struct {
	reply       string
	instruction string
	confirm     bool
}

type selectionMsg struct {
	accountID int
	folder    string
}

type foldersMsg struct {
	target  sync.Target
	folders []model.InboxFolder
	err     error
}

type pageMsg struct {
	res mailbox.Result
	err error
}

type openedMsg struct {
	target sync.Target
	id     string
	detail *model.MessageDetail
	err    error
}

type actionMsg struct {
	id     string
	action model.MessageAction
	resp   *model.Message
	err    error
}

type repliedMsg struct {
	resp *model.Message
	err  error
}

type smartReplyMsg struct {
	reply string
	err   error
}

// Model is the Bubble Tea model for the aggregated inbox.
type Model struct {
	mode     inboxMode
	backend  Backend
	kv       countdown.KV
	tracker  Tracker
	keys     *keys.KeyMap
	now      func() time.Time
	session  *mailbox.Session
	rows     *mailbox.Rows
	accounts []model.LinkedAccount
	account  int
	folders  []model.InboxFolder
	wantDir  string
	loading  bool
	sel      int

	reading   *model.MessageDetail
	readingID string
	actionID  string
	back      inboxMode
	pending   bool
	viewport  viewport.Model
	search    textinput.Model
	form      *huh.Form
	fb        *formBindings
	log       zerolog.Logger

	width  int
	height int
}

// New creates the inbox viewer. kv remembers the last account and
// folder and tracker may be nil.
func New(b Backend, kv countdown.KV, tracker Tracker, k *keys.KeyMap, pageSize, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "search messages..."
	si.Prompt = "/ "

	vp := viewport.New(max(width-4, 10), max(height-8, 4))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		mode:     modeList,
		backend:  b,
		kv:       kv,
		tracker:  tracker,
		keys:     k,
		now:      time.Now,
		session:  mailbox.NewSession(pageSize),
		rows:     &mailbox.Rows{},
		account:  -1,
		viewport: vp,
		search:   si,
		fb:       &formBindings{},
		log:      zerolog.Nop(),
	}
	m.SetSize(width, height)
	return m
}

// Init does nothing until accounts arrive through SetAccounts.
func (m Model) Init() tea.Cmd {
	return nil
}

// Session exposes the pagination state.
func (m Model) Session() *mailbox.Session { return m.session }

// Rows returns the grouped listing.
func (m Model) Rows() []mailbox.Row { return m.rows.All() }

// Folders returns the visible folders of the active account.
func (m Model) Folders() []model.InboxFolder { return m.folders }

// Unread returns the unread total of the active account.
func (m Model) Unread() int { return mailbox.TotalUnread(m.folders) }

// Idle reports whether no form or search input has the keyboard.
func (m Model) Idle() bool { return m.mode == modeList || m.mode == modeRead }

// Reading returns the open message, if any.
func (m Model) Reading() *model.MessageDetail { return m.reading }

// SetAccounts replaces the linked accounts and restores the last used
// account and folder.
func (m *Model) SetAccounts(accounts []model.LinkedAccount) tea.Cmd {
	m.accounts = accounts
	if len(accounts) == 0 {
		m.account = -1
		m.folders = nil
		m.rows = &mailbox.Rows{}
		m.session.SetAccount("", 0)
		if m.tracker != nil {
			m.tracker.ClearTarget()
		}
		return nil
	}
	if m.account >= 0 && m.account < len(accounts) {
		cur := m.session.Key()
		if accounts[m.account].ID == cur.AccountID && accounts[m.account].Service == cur.Service {
			return nil
		}
	}
	kv := m.kv
	if kv == nil {
		return func() tea.Msg { return selectionMsg{} }
	}
	return func() tea.Msg {
		ctx := context.Background()
		var sel selectionMsg
		if v, ok, err := kv.GetValue(ctx, store.KeyLastAccountID); err == nil && ok {
			sel.accountID, _ = strconv.Atoi(v)
		}
		if v, ok, err := kv.GetValue(ctx, store.KeyLastFolder); err == nil && ok {
			sel.folder = v
		}
		return sel
	}
}

func (m Model) target() sync.Target {
	k := m.session.Key()
	return sync.Target{Service: k.Service, AccountID: k.AccountID}
}

func (m Model) activeAccount() (model.LinkedAccount, bool) {
	if m.account < 0 || m.account >= len(m.accounts) {
		return model.LinkedAccount{}, false
	}
	return m.accounts[m.account], true
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case selectionMsg:
		idx := 0
		for i, a := range m.accounts {
			if a.ID == msg.accountID {
				idx = i
			}
		}
		m.wantDir = msg.folder
		return m.selectAccount(idx)

	case foldersMsg:
		if msg.target != m.target() {
			return m, nil
		}
		if msg.err != nil {
			return m, ui.Failure(msg.err)
		}
		return m.applyFolders(mailbox.VisibleFolders(msg.folders))

	case sync.FoldersMsg:
		if msg.Target != m.target() || msg.Error != nil {
			return m, nil
		}
		return m.applyFolders(msg.Folders)

	case pageMsg:
		return m.handlePage(msg)

	case openedMsg:
		return m.handleOpened(msg)

	case actionMsg:
		return m.handleAction(msg)

	case repliedMsg:
		m.pending = false
		if msg.err != nil {
			m.form = m.buildReplyForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.mode = modeRead
		m.fb.reply = ""
		return m, ui.Success(msg.resp.Message)

	case smartReplyMsg:
		m.pending = false
		if msg.err != nil {
			m.mode = modeRead
			return m, ui.Failure(msg.err)
		}
		m.fb.reply = msg.reply
		m.form = m.buildReplyForm()
		m.mode = modeReply
		return m, m.form.Init()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActive(msg)
}

// selectAccount activates the account at idx and loads its folders.
func (m Model) selectAccount(idx int) (Model, tea.Cmd) {
	if idx < 0 || idx >= len(m.accounts) {
		return m, nil
	}
	a := m.accounts[idx]
	m.account = idx
	m.folders = nil
	m.rows = &mailbox.Rows{}
	m.sel = 0
	m.session.SetAccount(a.Service, a.ID)
	m.search.SetValue("")

	t := m.target()
	if m.tracker != nil {
		m.tracker.SetTarget(t)
	}
	b := m.backend
	return m, tea.Batch(m.remember(store.KeyLastAccountID, strconv.Itoa(a.ID)), func() tea.Msg {
		folders, err := b.ListFolders(context.Background(), t.Service, t.AccountID)
		return foldersMsg{target: t, folders: folders, err: err}
	})
}

// applyFolders refreshes the folder list. The first list of an account
// picks the folder to show and loads it.
func (m Model) applyFolders(folders []model.InboxFolder) (Model, tea.Cmd) {
	first := m.folders == nil
	m.folders = folders
	if !first && m.session.Key().Folder != "" {
		return m, nil
	}

	folder := mailbox.DefaultFolder
	if len(folders) > 0 {
		folder = folders[0].Name
	}
	for _, f := range folders {
		if m.wantDir != "" && strings.EqualFold(f.Name, m.wantDir) {
			folder = f.Name
		}
	}
	m.wantDir = ""
	return m.selectFolder(folder)
}

func (m Model) selectFolder(folder string) (Model, tea.Cmd) {
	m.session.SetFolder(folder)
	m.session.Reset()
	m.rows = &mailbox.Rows{}
	m.sel = 0
	m.loading = true
	return m, tea.Batch(m.remember(store.KeyLastFolder, folder), m.fetch(false))
}

func (m Model) remember(key, value string) tea.Cmd {
	kv, lg := m.kv, m.log
	if kv == nil {
		return nil
	}
	return func() tea.Msg {
		if err := kv.SetValue(context.Background(), key, value); err != nil {
			lg.Warn().Err(err).Str("key", key).Msg("Remembering inbox selection failed")
		}
		return nil
	}
}

func (m Model) fetch(loadMore bool) tea.Cmd {
	req := m.session.NextRequest(loadMore)
	b := m.backend
	return func() tea.Msg {
		res, err := mailbox.Fetch(context.Background(), b, req)
		return pageMsg{res: res, err: err}
	}
}

func (m Model) loadFolders() tea.Cmd {
	t := m.target()
	if t.AccountID == 0 {
		return nil
	}
	b := m.backend
	return func() tea.Msg {
		folders, err := b.ListFolders(context.Background(), t.Service, t.AccountID)
		return foldersMsg{target: t, folders: folders, err: err}
	}
}

func (m Model) handlePage(msg pageMsg) (Model, tea.Cmd) {
	if msg.res.Request.Key != m.session.Key() {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		return m, ui.Failure(msg.err)
	}
	if err := m.session.Apply(msg.res); err != nil {
		if errors.Is(err, mailbox.ErrStaleResult) {
			return m, nil
		}
		return m, ui.Failure(err)
	}

	if msg.res.Request.LoadMore() {
		m.rows.Append(m.now(), msg.res.Messages)
	} else {
		m.rows = mailbox.Group(m.now(), m.session.Messages())
		m.sel = 0
	}
	m.sel = m.nearestMessage(m.sel, 1)
	return m, nil
}

// nearestMessage returns the first message row at or after i in
// direction dir, or -1 when there is none.
func (m Model) nearestMessage(i, dir int) int {
	rows := m.rows.All()
	for ; i >= 0 && i < len(rows); i += dir {
		if !rows[i].IsHeader() {
			return i
		}
	}
	return -1
}

func (m Model) selected() (*model.InboxMessage, bool) {
	rows := m.rows.All()
	if m.sel < 0 || m.sel >= len(rows) || rows[m.sel].IsHeader() {
		return nil, false
	}
	return rows[m.sel].Message, true
}

func (m Model) handleOpened(msg openedMsg) (Model, tea.Cmd) {
	if msg.target != m.target() {
		return m, nil
	}
	if msg.err != nil {
		return m, ui.Failure(msg.err)
	}
	m.reading = msg.detail
	m.readingID = msg.id
	m.mode = modeRead
	m.viewport.SetContent(m.renderDetail())
	m.viewport.GotoTop()

	row, ok := m.find(msg.id)
	if !ok || row.Message.IsRead {
		return m, nil
	}
	return m, m.action(msg.id, model.ActionRead)
}

func (m Model) find(id string) (*model.InboxMessage, bool) {
	for _, row := range m.rows.All() {
		if !row.IsHeader() && row.Message.ID == id {
			return row.Message, true
		}
	}
	return nil, false
}

func (m Model) handleAction(msg actionMsg) (Model, tea.Cmd) {
	m.pending = false
	if msg.err != nil {
		if msg.action == model.ActionDelete {
			m.mode = m.back
		}
		return m, ui.Failure(msg.err)
	}

	switch msg.action {
	case model.ActionRead, model.ActionUnread:
		read := msg.action == model.ActionRead
		m.rows.MarkRead(msg.id, read)
		m.session.MarkRead(msg.id, read)
		if m.reading != nil && m.readingID == msg.id {
			m.reading.IsRead = read
		}
		return m, m.loadFolders()

	case model.ActionDelete:
		m.rows.Remove(msg.id)
		m.session.Remove(msg.id)
		if m.readingID == msg.id {
			m.reading = nil
			m.readingID = ""
		}
		m.mode = modeList
		if n := m.nearestMessage(m.sel, 1); n >= 0 {
			m.sel = n
		} else {
			m.sel = m.nearestMessage(min(m.sel, m.rows.Len()-1), -1)
		}
		text := "Message deleted"
		if msg.resp != nil && msg.resp.Message != "" {
			text = msg.resp.Message
		}
		return m, tea.Batch(ui.Success(text), m.loadFolders())
	}
	return m, nil
}

func (m Model) action(id string, a model.MessageAction) tea.Cmd {
	t := m.target()
	b := m.backend
	return func() tea.Msg {
		resp, err := b.MessageAction(context.Background(), t.Service, t.AccountID, id, a)
		return actionMsg{id: id, action: a, resp: resp, err: err}
	}
}

func (m Model) open(id string) tea.Cmd {
	t := m.target()
	b := m.backend
	return func() tea.Msg {
		d, err := b.GetMessage(context.Background(), t.Service, t.AccountID, id)
		return openedMsg{target: t, id: id, detail: d, err: err}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeRead:
		return m.handleReadKey(msg)
	case modeReply, modeSmart, modeConfirmDelete:
		return m.updateForm(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, ui.Navigate(ui.RouteDashboard)

	case key.Matches(msg, m.keys.Down):
		if n := m.nearestMessage(m.sel+1, 1); n >= 0 {
			m.sel = n
		}

	case key.Matches(msg, m.keys.Up):
		if n := m.nearestMessage(m.sel-1, -1); n >= 0 {
			m.sel = n
		}

	case key.Matches(msg, m.keys.Select):
		if row, ok := m.selected(); ok {
			return m, m.open(row.ID)
		}

	case key.Matches(msg, m.keys.LoadMore):
		if m.session.HasMore() && !m.loading {
			m.loading = true
			return m, m.fetch(true)
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.target().AccountID == 0 {
			return m, nil
		}
		m.session.Reset()
		m.loading = true
		return m, tea.Batch(m.fetch(false), m.loadFolders())

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.session.Key().Query)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.NextFolder), key.Matches(msg, m.keys.PrevFolder):
		if len(m.folders) == 0 {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.PrevFolder) {
			step = len(m.folders) - 1
		}
		idx := (m.folderIndex() + step) % len(m.folders)
		return m.selectFolder(m.folders[idx].Name)

	case key.Matches(msg, m.keys.NextAccount):
		if len(m.accounts) > 1 {
			return m.selectAccount((m.account + 1) % len(m.accounts))
		}

	case key.Matches(msg, m.keys.ToggleRead):
		if row, ok := m.selected(); ok {
			return m, m.action(row.ID, toggle(row.Message.IsRead))
		}

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selected(); ok {
			return m.confirmDelete(row.ID)
		}
	}
	return m, nil
}

func toggle(read bool) model.MessageAction {
	if read {
		return model.ActionUnread
	}
	return model.ActionRead
}

func (m Model) folderIndex() int {
	cur := m.session.Key().Folder
	for i, f := range m.folders {
		if strings.EqualFold(f.Name, cur) {
			return i
		}
	}
	return 0
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.search.Blur()
		q := strings.TrimSpace(m.search.Value())
		if q == m.session.Key().Query {
			return m, nil
		}
		m.session.SetQuery(q)
		m.rows = &mailbox.Rows{}
		m.sel = 0
		m.loading = true
		return m, m.fetch(false)
	case "esc":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleReadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.Reply):
		m.fb.reply = ""
		m.form = m.buildReplyForm()
		m.back = modeRead
		m.mode = modeReply
		return m, m.form.Init()

	case key.Matches(msg, m.keys.SmartReply):
		m.fb.instruction = ""
		m.form = m.buildSmartForm()
		m.back = modeRead
		m.mode = modeSmart
		return m, m.form.Init()

	case key.Matches(msg, m.keys.ToggleRead):
		if m.reading != nil {
			return m, m.action(m.readingID, toggle(m.reading.IsRead))
		}

	case key.Matches(msg, m.keys.Delete):
		if m.readingID != "" {
			return m.confirmDelete(m.readingID)
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) confirmDelete(id string) (Model, tea.Cmd) {
	m.fb.confirm = false
	m.actionID = id
	m.back = m.mode
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this message?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
	m.mode = modeConfirmDelete
	return m, m.form.Init()
}

func (m Model) buildReplyForm() *huh.Form {
	title := "Reply"
	if m.reading != nil {
		title = mailbox.ReplySubject(m.reading.Subject)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Description("Markdown is converted to HTML").
				Value(&m.fb.reply).
				Validate(func(s string) error {
					_, err := mailbox.ReplyHTML(s)
					return err
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildSmartForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Smart reply").
				Description("Optional instruction for the drafted reply").
				Value(&m.fb.instruction),
		),
	).WithWidth(m.formWidth())
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
		return m.submitForm()
	case huh.StateAborted:
		m.mode = m.back
		return m, nil
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	m.pending = true
	switch m.mode {
	case modeConfirmDelete:
		if !m.fb.confirm {
			m.pending = false
			m.mode = m.back
			return m, nil
		}
		return m, m.action(m.actionID, model.ActionDelete)

	case modeReply:
		return m, m.reply(m.fb.reply)

	case modeSmart:
		return m, m.smartReply(m.fb.instruction)
	}
	return m, nil
}

func (m Model) reply(text string) tea.Cmd {
	body, err := mailbox.ReplyHTML(text)
	if err != nil {
		return func() tea.Msg { return repliedMsg{err: err} }
	}
	t := m.target()
	id := m.readingID
	b := m.backend
	return func() tea.Msg {
		resp, err := b.ReplyMessage(context.Background(), t.Service, t.AccountID, id, body)
		return repliedMsg{resp: resp, err: err}
	}
}

func (m Model) smartReply(instruction string) tea.Cmd {
	if m.reading == nil {
		return nil
	}
	req := model.SmartReplyRequest{
		Subject:     m.reading.Subject,
		Body:        mailbox.PlainText(m.reading.Body),
		Sender:      mailbox.SenderLabel(m.reading.From),
		OAuthID:     m.target().AccountID,
		Instruction: strings.TrimSpace(instruction),
	}
	b := m.backend
	return func() tea.Msg {
		resp, err := b.SmartReply(context.Background(), req)
		if err != nil {
			return smartReplyMsg{err: err}
		}
		return smartReplyMsg{reply: resp.Reply}
	}
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeReply, modeSmart, modeConfirmDelete:
		return m.updateForm(msg)
	case modeSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	case modeRead:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) formWidth() int  { return min(max(m.width-4, 20), 80) }
func (m Model) formHeight() int { return max(m.height-4, 8) }

// View renders the inbox.
func (m Model) View() string {
	switch m.mode {
	case modeReply, modeSmart, modeConfirmDelete:
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
	case modeRead:
		return m.viewRead()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	a, ok := m.activeAccount()
	if !ok {
		b.WriteString(theme.TitleStyle.Render("Inbox"))
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("No linked accounts. Link one from the accounts view."))
		return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
	}

	b.WriteString(theme.TitleStyle.Render("Inbox") + " " +
		theme.ServiceLabelStyle(a.Service).Render(a.Email))
	b.WriteString("\n")
	b.WriteString(m.renderFolders())
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	} else if q := m.session.Key().Query; q != "" {
		b.WriteString(theme.MutedStyle.Render("search: " + q))
		b.WriteString("\n")
	}

	rows := m.rows.All()
	switch {
	case m.loading && len(rows) == 0:
		b.WriteString(theme.HelpStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(rows) == 0:
		b.WriteString(theme.HelpStyle.Render("No messages"))
		b.WriteString("\n")
	default:
		for _, line := range m.visibleRows() {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	hints := "enter open | / search | tab folder | a account | u read | d delete | r refresh"
	if m.session.HasMore() {
		hints = "m load more | " + hints
	}
	b.WriteString(theme.HelpStyle.Render(hints))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) renderFolders() string {
	if len(m.folders) == 0 {
		return theme.MutedStyle.Render(m.session.Key().Folder)
	}
	cur := m.folderIndex()
	parts := make([]string, 0, len(m.folders))
	for i, f := range m.folders {
		label := f.Name
		if f.UnreadCount > 0 {
			label = fmt.Sprintf("%s (%d)", f.Name, f.UnreadCount)
		}
		if i == cur {
			parts = append(parts, theme.SelectedItemStyle.Render(label))
		} else {
			parts = append(parts, theme.MutedStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// visibleRows renders the window of rows around the selection that fits
// the view height.
func (m Model) visibleRows() []string {
	rows := m.rows.All()
	window := max(m.height-10, 3)
	start := 0
	if m.sel >= window {
		start = m.sel - window + 1
	}
	end := min(start+window, len(rows))

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := rows[i]
		if row.IsHeader() {
			out = append(out, theme.BucketHeaderStyle.Render(string(row.Header)))
			continue
		}
		h := row.Message.Message
		line := fmt.Sprintf("%-28s %s  %s",
			truncate(mailbox.ParseAddress(mailbox.FromLabel(h)).Name, 28),
			truncate(mailbox.SubjectLabel(h.Subject), max(m.width-60, 10)),
			theme.MutedStyle.Render(mailbox.FormatDate(h.Date)))
		if len(h.Attachments) > 0 {
			line += " +"
		}
		style := theme.ListItemStyle
		if i == m.sel {
			style = theme.SelectedItemStyle
		}
		if !h.IsRead {
			style = style.Inherit(theme.UnreadStyle)
		}
		out = append(out, style.Render(line))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func (m Model) renderDetail() string {
	d := m.reading
	if d == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", mailbox.ParseAddress(d.From))
	if d.To != "" {
		fmt.Fprintf(&b, "To: %s\n", d.To)
	}
	if d.CC != "" {
		fmt.Fprintf(&b, "Cc: %s\n", d.CC)
	}
	if d.BCC != "" {
		fmt.Fprintf(&b, "Bcc: %s\n", d.BCC)
	}
	fmt.Fprintf(&b, "Date: %s\n\n", mailbox.FormatDate(d.Date))
	b.WriteString(mailbox.BodyMarkdown(d.Body))
	if len(d.Attachments) > 0 {
		b.WriteString("\n\nAttachments:\n")
		for _, a := range d.Attachments {
			fmt.Fprintf(&b, "  %s (%.2f KB)\n", a.Filename, a.Size)
		}
	}
	return b.String()
}

func (m Model) viewRead() string {
	subject := "No Subject"
	if m.reading != nil {
		subject = mailbox.SubjectLabel(m.reading.Subject)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render(subject),
		m.viewport.View(),
		theme.HelpStyle.Render("R reply | A smart reply | u toggle read | d delete | esc back"),
	)
	return theme.PanelStyle.Width(max(m.width-4, 10)).Render(content)
}

// SetLogger sets the logger used when the selection cannot be saved.
func (m *Model) SetLogger(l zerolog.Logger) {
	m.log = l
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-8, 10)
	m.viewport.Width = max(width-6, 10)
	m.viewport.Height = max(height-8, 4)
	if m.reading != nil {
		m.viewport.SetContent(m.renderDetail())
	}
}

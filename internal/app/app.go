package app

import (
	"context"
	"fmt"
	"reflect"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/api"
	composer "github.com/nhle/easymail/internal/compose"
	"github.com/nhle/easymail/internal/countdown"
	"github.com/nhle/easymail/internal/credential"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	appsync "github.com/nhle/easymail/internal/sync"
	"github.com/nhle/easymail/internal/ui"
	"github.com/nhle/easymail/internal/ui/auth"
	"github.com/nhle/easymail/internal/ui/command"
	composeview "github.com/nhle/easymail/internal/ui/compose"
	"github.com/nhle/easymail/internal/ui/contacts"
	"github.com/nhle/easymail/internal/ui/dashboard"
	helpview "github.com/nhle/easymail/internal/ui/help"
	"github.com/nhle/easymail/internal/ui/history"
	inboxview "github.com/nhle/easymail/internal/ui/inbox"
	"github.com/nhle/easymail/internal/ui/links"
	"github.com/nhle/easymail/internal/ui/profile"
)

// recentChats is how many chats the dashboard lists.
const recentChats = 5

// recentNotifications is how many log entries the help overlay shows.
const recentNotifications = 10

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// toastExpiredMsg clears the toast it was scheduled for.
type toastExpiredMsg struct {
	gen int
}

// recentNotificationsMsg carries the log entries shown in the help overlay.
type recentNotificationsMsg struct {
	notes []model.Notification
}

// overlay is drawn instead of the active route.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCommand
)

// Deps are the long-lived collaborators of the root model.
type Deps struct {
	Config *model.AppConfig
	Client *api.Client
	Store  store.Store

	// Vault may be nil, in which case nothing is remembered.
	Vault *credential.Vault

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Model is the root Bubble Tea model that manages routing between
// screens, the shared header and status bar, toasts and the session.
type Model struct {
	route   ui.Route
	overlay overlay
	layout  ui.Layout
	ready   bool

	cfg    *model.AppConfig
	client *api.Client
	store  store.Store
	vault  *credential.Vault
	log    zerolog.Logger
	keys   *keys.KeyMap
	timer  *countdown.Timer
	poller *appsync.Poller

	// polling is set once the poller goroutine was started.
	polling bool

	auth        auth.Model
	dashboard   dashboard.Model
	inbox       inboxview.Model
	compose     composeview.Model
	contacts    contacts.Model
	history     history.Model
	links       links.Model
	profile     profile.Model
	helpView    helpview.Model
	commandView command.Model

	user        *model.User
	unreadCount int
	mailUnread  int
	toast       ui.Toast
	toastGen    int
}

// New creates the root model. A client that already carries session
// cookies starts on the dashboard, anything else on the login form.
func New(d Deps) Model {
	cfg := d.Config
	k := keys.DefaultKeyMap()
	timer := countdown.NewTimer(d.Store, store.KeyTimerEnd)
	interval := time.Duration(cfg.Inbox.PollIntervalSec) * time.Second

	logger := zerolog.Nop()
	if d.Logger != nil {
		logger = *d.Logger
	}

	m := Model{
		route:       ui.RouteLogin,
		layout:      ui.NewLayout(80, 24),
		cfg:         cfg,
		client:      d.Client,
		store:       d.Store,
		vault:       d.Vault,
		log:         logger.With().Str("component", "app").Logger(),
		keys:        k,
		timer:       timer,
		poller:      appsync.New(d.Client, d.Store, interval),
		auth:        auth.New(d.Client, timer, 80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
	}
	m.poller.SetLogger(logger.With().Str("component", "poller").Logger())
	m.auth.SetLogger(logger.With().Str("component", "auth").Logger())
	m.buildViews()

	if d.Vault != nil {
		if name, err := d.Vault.LastUsername(); err == nil && name != "" {
			m.auth.SetUsername(name)
		}
	}
	if len(d.Client.Cookies()) > 0 {
		m.route = ui.RouteDashboard
	}
	return m
}

// buildViews creates fresh signed-in views so nothing of a previous
// session survives a logout.
func (m *Model) buildViews() {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	cfg := m.cfg

	flow := composer.NewFlow(m.client, composer.NewSettings(cfg.Compose.DefaultTone, cfg.Compose.DefaultLength))
	reveal := time.Duration(cfg.Compose.RevealIntervalMs) * time.Millisecond

	m.dashboard = dashboard.New(m.client, m.keys, recentChats, w, h)
	m.inbox = inboxview.New(m.client, m.store, m.poller, m.keys, cfg.Inbox.PageSize, w, h)
	m.compose = composeview.New(flow, m.keys, reveal, cfg.Compose.ExportDir, w, h)
	m.contacts = contacts.New(m.client, m.keys, cfg.Contacts.PerPage, w, h)
	m.history = history.New(m.client, m.keys, cfg.Chats.PerPage, w, h)
	m.links = links.New(m.client, m.keys, m.client.BaseURL(), w, h)
	m.profile = profile.New(m.client, m.store, m.timer, m.keys, w, h)
	m.inbox.SetLogger(m.log.With().Str("view", "inbox").Logger())
	m.profile.SetLogger(m.log.With().Str("view", "profile").Logger())
	m.user = nil
	m.mailUnread = 0
}

// Route returns the active screen.
func (m Model) Route() ui.Route { return m.route }

// Toast returns the toast currently shown in the status bar.
func (m Model) Toast() ui.Toast { return m.toast }

// Init loads the first screen and the notification count.
func (m Model) Init() tea.Cmd {
	if m.signedOut() {
		return tea.Batch(m.auth.Init(), m.fetchUnreadCount())
	}
	return tea.Batch(m.dashboard.Init(), m.fetchUnreadCount())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.setSizes()
		// Forward to active view so huh forms can calculate their layout.
		return m.deliver(m.route, msg)

	case ui.ToastMsg:
		m.toast = ui.Toast(msg)
		m.toastGen++
		gen := m.toastGen
		return m, tea.Batch(
			m.logToast(m.toast),
			tea.Tick(ui.ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{gen: gen} }),
		)

	case toastExpiredMsg:
		if msg.gen == m.toastGen {
			m.toast = ui.Toast{}
		}
		return m, nil

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case recentNotificationsMsg:
		m.helpView.SetNotifications(msg.notes)
		m.unreadCount = 0
		return m, nil

	case ui.NavigateMsg:
		return m.navigate(msg)

	case ui.SessionExpiredMsg:
		if m.signedOut() {
			return m, nil
		}
		m.endSession()
		m.route = ui.RouteLogin
		cmd := m.auth.Show(auth.ScreenLogin)
		return m, cmd

	case auth.LoggedInMsg:
		return m, m.persistLogin(msg)

	case loggedOutMsg:
		return m.handleLoggedOut(msg)

	case dashboard.LoadedMsg:
		if msg.Err == nil && msg.User != nil && !msg.User.Verified() {
			return m.requireVerification(msg.User)
		}
		var cmds []tea.Cmd
		if msg.Err == nil {
			m.user = msg.User
			cmds = append(cmds, m.setAccounts(msg.Accounts))
			if !m.polling {
				m.polling = true
				cmds = append(cmds, m.poller.Start())
			}
		}
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case links.AccountsMsg:
		var accountsCmd tea.Cmd
		if msg.Err == nil {
			accountsCmd = m.setAccounts(msg.Accounts)
		}
		var cmd tea.Cmd
		m.links, cmd = m.links.Update(msg)
		return m, tea.Batch(accountsCmd, cmd)

	case profile.ProfileMsg:
		if msg.Err == nil && msg.User != nil && !msg.User.Verified() {
			return m.requireVerification(msg.User)
		}
		if msg.Err == nil {
			m.user = msg.User
		}
		var cmd tea.Cmd
		m.profile, cmd = m.profile.Update(msg)
		return m, cmd

	case appsync.FoldersMsg:
		return m.handleFolders(msg)

	case composeview.SentMsg:
		return m, tea.Batch(m.dashboard.Reload(), m.history.Reload())

	case command.CommandMsg:
		m.overlay = overlayNone
		return m.executeCommand(msg)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	if m.overlay == overlayCommand {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			if _, owned := ownerOf(msg); !owned {
				var cmd tea.Cmd
				m.commandView, cmd = m.commandView.Update(msg)
				return m, cmd
			}
		}
	}

	// Replies to a view's own commands go back to that view even when
	// another screen became active in the meantime.
	if r, ok := ownerOf(msg); ok {
		return m.deliver(r, msg)
	}
	return m.deliver(m.route, msg)
}

// setSizes propagates the content area to every view.
func (m *Model) setSizes() {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.auth.SetSize(w, h)
	m.dashboard.SetSize(w, h)
	m.inbox.SetSize(w, h)
	m.compose.SetSize(w, h)
	m.contacts.SetSize(w, h)
	m.history.SetSize(w, h)
	m.links.SetSize(w, h)
	m.profile.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
}

// owners maps a view package to the route that shows it.
var owners = map[string]ui.Route{
	pkgOf(auth.Model{}):        ui.RouteLogin,
	pkgOf(dashboard.Model{}):   ui.RouteDashboard,
	pkgOf(inboxview.Model{}):   ui.RouteInbox,
	pkgOf(composeview.Model{}): ui.RouteCompose,
	pkgOf(contacts.Model{}):    ui.RouteContacts,
	pkgOf(history.Model{}):     ui.RouteHistory,
	pkgOf(links.Model{}):       ui.RouteLinks,
	pkgOf(profile.Model{}):     ui.RouteProfile,
}

func pkgOf(v any) string {
	return reflect.TypeOf(v).PkgPath()
}

// ownerOf returns the route of the view package that declared msg's type.
func ownerOf(msg tea.Msg) (ui.Route, bool) {
	t := reflect.TypeOf(msg)
	if t == nil {
		return "", false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r, ok := owners[t.PkgPath()]
	return r, ok
}

// deliver dispatches msg to the view shown on route r.
func (m Model) deliver(r ui.Route, msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch r {
	case ui.RouteLogin, ui.RouteRegister, ui.RouteVerify, ui.RouteForgot:
		m.auth, cmd = m.auth.Update(msg)
	case ui.RouteDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ui.RouteInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case ui.RouteCompose:
		m.compose, cmd = m.compose.Update(msg)
	case ui.RouteContacts:
		m.contacts, cmd = m.contacts.Update(msg)
	case ui.RouteHistory:
		m.history, cmd = m.history.Update(msg)
	case ui.RouteLinks:
		m.links, cmd = m.links.Update(msg)
	case ui.RouteProfile:
		m.profile, cmd = m.profile.Update(msg)
	}

	return m, cmd
}

// signedOut reports whether one of the signed-out forms is active.
func (m Model) signedOut() bool {
	switch m.route {
	case ui.RouteLogin, ui.RouteRegister, ui.RouteVerify, ui.RouteForgot:
		return true
	}
	return false
}

// navigate switches screens and starts the target view.
func (m Model) navigate(msg ui.NavigateMsg) (Model, tea.Cmd) {
	m.overlay = overlayNone
	prev := m.route
	m.route = msg.Route

	var cmd tea.Cmd
	switch msg.Route {
	case ui.RouteLogin:
		cmd = m.auth.Show(auth.ScreenLogin)
	case ui.RouteRegister:
		cmd = m.auth.Show(auth.ScreenRegister)
	case ui.RouteVerify:
		cmd = m.auth.Show(auth.ScreenVerify)
	case ui.RouteForgot:
		cmd = m.auth.Show(auth.ScreenForgot)
	case ui.RouteDashboard:
		cmd = m.dashboard.Reload()
	case ui.RouteInbox:
		m.poller.Refresh()
		cmd = m.inbox.Init()
	case ui.RouteCompose:
		switch {
		case msg.ChatID > 0:
			cmd = m.compose.Open(msg.ChatID)
		case !m.compose.Idle():
			cmd = m.compose.Init()
		}
	case ui.RouteContacts:
		cmd = m.contacts.Init()
	case ui.RouteHistory:
		cmd = m.history.Reload()
	case ui.RouteLinks:
		cmd = m.links.Init()
	case ui.RouteProfile:
		cmd = m.profile.Init()
	default:
		m.log.Warn().Str("route", string(msg.Route)).Msg("Ignoring navigation to unknown route")
		m.route = prev
	}
	return m, cmd
}

// requireVerification sends a signed-in user whose address is not
// confirmed to the code entry screen. The session is kept.
func (m Model) requireVerification(u *model.User) (Model, tea.Cmd) {
	m.user = u
	m.log.Info().Str("username", u.Username).Msg("Email not verified, showing verification")
	next, cmd := m.navigate(ui.NavigateMsg{Route: ui.RouteVerify})
	return next, tea.Batch(ui.Warning("Verify your email to continue"), cmd)
}

// setAccounts hands the linked accounts to every view that picks one.
func (m *Model) setAccounts(accounts []model.LinkedAccount) tea.Cmd {
	m.compose.SetAccounts(accounts)
	return m.inbox.SetAccounts(accounts)
}

// handleFolders applies a background folder poll.
func (m Model) handleFolders(msg appsync.FoldersMsg) (Model, tea.Cmd) {
	wait := m.poller.WaitForNextResult()
	if m.signedOut() {
		return m, wait
	}
	if msg.Expired {
		return m, tea.Batch(wait, ui.Failure(msg.Error))
	}
	if msg.Error != nil {
		m.log.Warn().Err(msg.Error).Int("account_id", msg.Target.AccountID).Msg("Polling folders failed")
		return m, wait
	}

	m.mailUnread = msg.Unread
	var cmd tea.Cmd
	m.inbox, cmd = m.inbox.Update(msg)

	cmds := []tea.Cmd{wait, cmd}
	if msg.NewUnread > 0 {
		cmds = append(cmds, m.fetchUnreadCount())
	}
	return m, tea.Batch(cmds...)
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(msg command.CommandMsg) (Model, tea.Cmd) {
	switch msg.Action {
	case command.ActionNavigate:
		return m.navigate(ui.NavigateMsg{Route: msg.Route})
	case command.ActionRefresh:
		m.poller.Refresh()
		return m, m.refreshActive()
	case command.ActionLogout:
		return m, m.logout()
	case command.ActionHelp:
		return m.openHelp()
	case command.ActionQuit:
		m.poller.Stop()
		return m, tea.Quit
	default:
		return m, ui.Warning(fmt.Sprintf("Unknown command: %s", msg.Raw))
	}
}

// refreshActive reloads the data behind the active screen.
func (m Model) refreshActive() tea.Cmd {
	switch m.route {
	case ui.RouteDashboard:
		return m.dashboard.Reload()
	case ui.RouteContacts:
		return m.contacts.Init()
	case ui.RouteHistory:
		return m.history.Reload()
	case ui.RouteLinks:
		return m.links.Init()
	case ui.RouteProfile:
		return m.profile.Init()
	default:
		return nil
	}
}

// logToast records a toast in the notification log and returns the new
// unread count.
func (m Model) logToast(t ui.Toast) tea.Cmd {
	s, lg := m.store, m.log
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.CreateNotification(ctx, model.Notification{Level: t.Level, Message: t.Text}); err != nil {
			lg.Error().Err(err).Msg("Failed to log notification")
			return nil
		}
		notes, err := s.GetUnreadNotifications(ctx)
		if err != nil {
			lg.Error().Err(err).Msg("Failed to count unread notifications")
			return nil
		}
		return unreadCountMsg{count: len(notes)}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

// openHelp shows the help overlay and marks the notification log read.
func (m Model) openHelp() (Model, tea.Cmd) {
	m.overlay = overlayHelp
	s, lg := m.store, m.log
	return m, func() tea.Msg {
		ctx := context.Background()
		notes, err := s.GetRecentNotifications(ctx, recentNotifications)
		if err != nil {
			lg.Error().Err(err).Msg("Failed to load recent notifications")
			return nil
		}
		if err := s.MarkAllNotificationsRead(ctx); err != nil {
			lg.Warn().Err(err).Msg("Failed to mark notifications read")
		}
		return recentNotificationsMsg{notes: notes}
	}
}

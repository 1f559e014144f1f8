package profile

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/countdown"
	"github.com/nhle/easymail/internal/keys"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// PasswordRuleMessage is shown when a password change fails validation
// without a backend message.
const PasswordRuleMessage = "Password must be at least 8 characters."

// Backend is the subset of the API client used by the profile view.
type Backend interface {
	GetProfile(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, p model.ProfileUpdate) (*model.Message, error)
	UpdatePassword(ctx context.Context, p model.PasswordChange) (*model.Message, error)
	UpdateEmail(ctx context.Context, email string) (*model.Message, error)
	VerifyEmail(ctx context.Context, otp string) (*model.Message, error)
}

// GravatarURL returns the avatar URL for email, falling back to an
// initials avatar for name.
func GravatarURL(email, name string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	fallback := "https://ui-avatars.com/api/" + url.PathEscape(strings.TrimSpace(name)) + "/128"
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) +
		"?d=" + url.QueryEscape(fallback)
}

// CachedAvatar returns the cached avatar URL, computing and caching it
// from u when absent.
func CachedAvatar(ctx context.Context, kv countdown.KV, u model.User) (string, error) {
	if cached, ok, err := kv.GetValue(ctx, store.KeyGravatarURL); err != nil {
		return "", fmt.Errorf("reading avatar cache: %w", err)
	} else if ok && cached != "" {
		return cached, nil
	}
	avatar := GravatarURL(u.Email, u.FullName())
	if err := kv.SetValue(ctx, store.KeyGravatarURL, avatar); err != nil {
		return "", fmt.Errorf("writing avatar cache: %w", err)
	}
	return avatar, nil
}

// ProfileMsg carries the signed-in user.
type ProfileMsg struct {
	User   *model.User
	Avatar string
	Err    error
}

// Load returns a command that fetches the profile and resolves the avatar.
func Load(b Backend, kv countdown.KV) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		u, err := b.GetProfile(ctx)
		if err != nil {
			return ProfileMsg{Err: err}
		}
		avatar := GravatarURL(u.Email, u.FullName())
		if kv != nil {
			if cached, err := CachedAvatar(ctx, kv, *u); err == nil {
				avatar = cached
			}
		}
		return ProfileMsg{User: u, Avatar: avatar}
	}
}

type profileMode int

const (
	modeView profileMode = iota
	modeEdit
	modePassword
	modeEmail
	modeEmailOTP
)

type formBindings struct {
	update   model.ProfileUpdate
	gradYear string
	password model.PasswordChange
	email    string
	otp      string
}

type savedMsg struct{ err error }

type passwordMsg struct{ err error }

type emailMsg struct {
	resp     *model.Message
	cooldown countdown.Countdown
	err      error
}

type verifiedMsg struct {
	resp *model.Message
	err  error
}

var profileKeys = struct {
	Password key.Binding
	Email    key.Binding
}{
	Password: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "change password")),
	Email:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "change email")),
}

// Model is the Bubble Tea model for the profile page.
type Model struct {
	mode    profileMode
	backend Backend
	kv      countdown.KV
	timer   *countdown.Timer
	keys    *keys.KeyMap
	user    *model.User
	avatar  string
	form    *huh.Form
	fb      *formBindings
	log     zerolog.Logger
	button  string
	busy    bool
	width   int
	height  int
}

// New creates the profile view. kv caches the avatar URL and timer holds
// the email change cooldown.
func New(b Backend, kv countdown.KV, timer *countdown.Timer, k *keys.KeyMap, width, height int) Model {
	return Model{
		backend: b,
		kv:      kv,
		timer:   timer,
		keys:    k,
		fb:      &formBindings{},
		log:     zerolog.Nop(),
		width:   width,
		height:  height,
	}
}

// SetLogger sets the logger used for cache and cooldown failures.
func (m *Model) SetLogger(l zerolog.Logger) {
	m.log = l
}

// Init loads the profile.
func (m Model) Init() tea.Cmd {
	return Load(m.backend, m.kv)
}

// Idle reports whether no form has the keyboard.
func (m Model) Idle() bool { return m.mode == modeView }

// User returns the loaded profile, or nil.
func (m Model) User() *model.User {
	return m.user
}

// ButtonLabel returns the submit label of the open form.
func (m Model) ButtonLabel() string {
	return m.button
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ProfileMsg:
		if msg.Err != nil {
			return m, ui.Failure(msg.Err)
		}
		m.user = msg.User
		m.avatar = msg.Avatar
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.button = "Update"
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.mode = modeView
		return m, tea.Batch(ui.Success("Profile updated"), Load(m.backend, m.kv))

	case passwordMsg:
		m.busy = false
		m.button = "Change Password"
		if msg.err != nil {
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), passwordFailure(msg.err))
		}
		m.fb.password = model.PasswordChange{}
		m.mode = modeView
		return m, ui.Success("Password changed")

	case emailMsg:
		m.busy = false
		if msg.err != nil {
			m.button = "Change Email"
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.mode = modeEmailOTP
		m.fb.otp = ""
		m.button = "Verify"
		m.form = m.buildForm()
		return m, tea.Batch(m.form.Init(), ui.Success(msg.resp.Message))

	case verifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.fb.otp = ""
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		m.mode = modeView
		return m, tea.Batch(
			ui.Success(msg.resp.Message),
			tea.Sequence(m.invalidateAvatar(), Load(m.backend, m.kv)),
		)

	case tea.KeyMsg:
		if m.mode == modeView {
			return m.handleViewKey(msg)
		}
		if m.busy {
			return m, nil
		}
	}

	if m.mode == modeView || m.form == nil || m.busy {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) handleViewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, ui.Navigate(ui.RouteDashboard)
	case key.Matches(msg, m.keys.Refresh):
		return m, Load(m.backend, m.kv)
	}
	if m.user == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		m.fb.update = model.ProfileUpdateFrom(*m.user)
		m.fb.gradYear = ""
		if m.user.GraduationYear != nil {
			m.fb.gradYear = strconv.Itoa(*m.user.GraduationYear)
		}
		return m.open(modeEdit, "Save Changes")

	case key.Matches(msg, profileKeys.Password):
		m.fb.password = model.PasswordChange{}
		return m.open(modePassword, "Change Password")

	case key.Matches(msg, profileKeys.Email):
		if m.timer != nil {
			c, err := m.timer.Load(context.Background())
			if err == nil {
				if left := c.Remaining(m.timer.Now()); left > 0 {
					return m, ui.Warning(fmt.Sprintf(
						"Please wait for %d seconds before updating your email again", left))
				}
			}
		}
		m.fb.email = m.user.Email
		return m.open(modeEmail, "Change Email")
	}
	return m, nil
}

func (m Model) open(mode profileMode, button string) (Model, tea.Cmd) {
	m.mode = mode
	m.button = button
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		m.mode = modeView
		return m, nil
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	switch m.mode {
	case modeEdit:
		update, err := m.profileUpdate()
		if err != nil {
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(err))
		}
		m.busy = true
		m.button = "Updating..."
		b := m.backend
		return m, func() tea.Msg {
			_, err := b.UpdateProfile(context.Background(), update)
			return savedMsg{err: err}
		}

	case modePassword:
		m.busy = true
		m.button = "Changing..."
		b, req := m.backend, m.fb.password
		return m, func() tea.Msg {
			_, err := b.UpdatePassword(context.Background(), req)
			return passwordMsg{err: err}
		}

	case modeEmail:
		m.busy = true
		m.button = "Sending..."
		b, timer, lg := m.backend, m.timer, m.log
		email := strings.TrimSpace(m.fb.email)
		return m, func() tea.Msg {
			ctx := context.Background()
			resp, err := b.UpdateEmail(ctx, email)
			if err != nil {
				return emailMsg{err: err}
			}
			var c countdown.Countdown
			if timer != nil {
				if err := timer.Clear(ctx); err != nil {
					lg.Warn().Err(err).Msg("Clearing email cooldown failed")
				}
				if c, err = timer.Start(ctx, countdown.DefaultCooldown); err != nil {
					lg.Warn().Err(err).Msg("Saving email cooldown failed")
				}
			}
			return emailMsg{resp: resp, cooldown: c}
		}

	case modeEmailOTP:
		m.busy = true
		b, otp := m.backend, strings.TrimSpace(m.fb.otp)
		return m, func() tea.Msg {
			resp, err := b.VerifyEmail(context.Background(), otp)
			return verifiedMsg{resp: resp, err: err}
		}
	}
	return m, nil
}

// profileUpdate builds the update body, parsing the graduation year.
func (m Model) profileUpdate() (model.ProfileUpdate, error) {
	u := m.fb.update
	year := strings.TrimSpace(m.fb.gradYear)
	if year == "" {
		u.GraduationYear = nil
		return u, nil
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return u, fmt.Errorf("graduation year must be a number")
	}
	u.GraduationYear = &n
	return u, nil
}

// passwordFailure shows the backend message, or the password rule when
// the backend only returned field errors.
func passwordFailure(err error) tea.Cmd {
	if apiErr, ok := api.AsError(err); ok && (len(apiErr.Fields) > 0 || apiErr.Message == "") {
		return ui.Notify(model.LevelError, PasswordRuleMessage)
	}
	return ui.Failure(err)
}

func (m Model) invalidateAvatar() tea.Cmd {
	kv, lg := m.kv, m.log
	if kv == nil {
		return nil
	}
	return func() tea.Msg {
		if err := kv.DeleteValue(context.Background(), store.KeyGravatarURL); err != nil {
			lg.Warn().Err(err).Msg("Dropping cached avatar failed")
		}
		return nil
	}
}

func (m Model) buildForm() *huh.Form {
	var group *huh.Group

	switch m.mode {
	case modeEdit:
		group = huh.NewGroup(
			huh.NewInput().Title("First name").Value(&m.fb.update.FirstName),
			huh.NewInput().Title("Last name").Value(&m.fb.update.LastName),
			huh.NewInput().Title("Username").Value(&m.fb.update.Username),
			huh.NewInput().Title("Phone code").Value(&m.fb.update.PhoneCode),
			huh.NewInput().Title("Phone").Value(&m.fb.update.PhoneNumber),
			huh.NewInput().Title("Company").Value(&m.fb.update.Company),
			huh.NewInput().Title("Job").Value(&m.fb.update.WorkTitle),
			huh.NewInput().Title("College").Value(&m.fb.update.College),
			huh.NewInput().Title("Major").Value(&m.fb.update.Major),
			huh.NewInput().Title("Graduation year").CharLimit(4).Value(&m.fb.gradYear),
		).Title("Edit Profile")

	case modePassword:
		group = huh.NewGroup(
			huh.NewInput().Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password.CurrentPassword),
			huh.NewInput().Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password.NewPassword),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password.ConfirmPassword),
		).Title("Change Password")

	case modeEmail:
		original := ""
		if m.user != nil {
			original = m.user.Email
		}
		group = huh.NewGroup(
			huh.NewInput().
				Title("New Email").
				Placeholder("Enter your new email address").
				Value(&m.fb.email).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if !strings.Contains(s, "@") {
						return fmt.Errorf("a valid email is required")
					}
					if strings.EqualFold(s, original) {
						return fmt.Errorf("this is already your email")
					}
					return nil
				}),
		).Title("Update Email").Description("Current email: " + original)

	default:
		group = huh.NewGroup(
			huh.NewInput().
				Title("Verification code").
				Description("Enter the 6-digit code sent to your new email.").
				CharLimit(6).
				Value(&m.fb.otp).
				Validate(func(s string) error {
					if len(strings.TrimSpace(s)) != 6 {
						return fmt.Errorf("invalid OTP")
					}
					return nil
				}),
		).Title("Verify Email")
	}

	return huh.NewForm(group).
		WithShowHelp(false).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

// View renders the profile or the open form.
func (m Model) View() string {
	if m.mode != modeView && m.form != nil {
		var b strings.Builder
		if !m.busy {
			b.WriteString(m.form.View())
			b.WriteString("\n")
		}
		b.WriteString(theme.SelectedItemStyle.Render("[ " + m.button + " ]"))
		b.WriteString("\n\n")
		b.WriteString(theme.HelpStyle.Render("enter submit | esc cancel"))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Profile"))
	b.WriteString("\n")

	u := m.user
	if u == nil {
		b.WriteString(theme.HelpStyle.Render("Loading..."))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(" " + value + "\n")
	}

	status := lipgloss.NewStyle().Foreground(theme.ColorRed).Render("Verify")
	if u.Verified() {
		status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("Verified")
	}

	row("Name", u.FullName())
	row("Username", "@"+u.Username)
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("%-12s", "Email")))
	b.WriteString(" " + u.Email + " " + status + "\n")
	row("Phone", strings.TrimSpace(u.PhoneCode+" "+u.PhoneNumber))
	row("Company", u.Company)
	row("Job", u.WorkTitle)
	row("College", u.College)
	row("Major", u.Major)
	if u.GraduationYear != nil {
		row("Graduation", strconv.Itoa(*u.GraduationYear))
	} else {
		row("Graduation", "")
	}
	row("Avatar", m.avatar)

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("e edit | p change password | m change email | r reload | esc back"))

	return theme.PanelStyle.Width(min(m.width-4, 100)).Render(b.String())
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
	if w > 80 {
		w = 80
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

package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/countdown"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
	"github.com/nhle/easymail/internal/ui"
)

// Screen selects which signed-out form is shown.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenVerify
	ScreenForgot
)

// Button labels. The busy label replaces the idle one while a request is
// in flight and reverts on failure.
const (
	LabelLogin       = "Login"
	LabelLoggingIn   = "Logging in..."
	LabelRegister    = "Register"
	LabelRegistering = "Registering..."
	LabelVerify      = "Verify"
	LabelResend      = "Resend code"
	LabelResending   = "Resending..."
	LabelSendOTP     = "Send OTP"
	LabelSending     = "Sending..."
	LabelReset       = "Reset Password"
	LabelResetting   = "Resetting..."
)

// ErrInvalidOTP is reported when the code is not exactly six digits.
var ErrInvalidOTP = errors.New("invalid OTP")

// Backend is the subset of the API client used by the signed-out forms.
type Backend interface {
	Authenticate(ctx context.Context, username, password string, remember bool) (*model.Message, error)
	Register(ctx context.Context, reg model.Registration) (*model.Message, error)
	ResendVerification(ctx context.Context) (*model.Message, error)
	VerifyEmail(ctx context.Context, otp string) (*model.Message, error)
	RequestPasswordReset(ctx context.Context, email string) (*model.Message, error)
	ResetPassword(ctx context.Context, r model.PasswordReset) (*model.Message, error)
}

// LoggedInMsg is sent once the backend accepted the credentials.
type LoggedInMsg struct {
	Username string
	Remember bool
}

type formBindings struct {
	username  string
	password  string
	remember  bool
	email     string
	firstName string
	lastName  string
	phoneCode string
	phone     string
	terms     bool
	privacy   bool
	otp       string
	newPass   string
	confirm   string
}

type loginDoneMsg struct {
	username string
	remember bool
	err      error
}

type registerDoneMsg struct{ err error }

type verifyDoneMsg struct{ err error }

type resendDoneMsg struct {
	resp     *model.Message
	cooldown countdown.Countdown
	err      error
}

type resetDoneMsg struct {
	resp *model.Message
	err  error
}

type cooldownLoadedMsg struct{ cooldown countdown.Countdown }

type cooldownTickMsg struct{}

var authKeys = struct {
	Register key.Binding
	Forgot   key.Binding
	Resend   key.Binding
	Back     key.Binding
}{
	Register: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "register")),
	Forgot:   key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "forgot password")),
	Resend:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "resend code")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to login")),
}

// Model is the Bubble Tea model for login, registration, email
// verification and password reset.
type Model struct {
	screen  Screen
	backend Backend
	timer   *countdown.Timer
	form    *huh.Form
	fb      *formBindings
	log     zerolog.Logger

	// otpSent switches the forgot-password screen to the reset step.
	otpSent bool

	button    string
	secondary string
	busy      bool
	cooldown  countdown.Countdown
	ticking   bool
	fieldErrs map[string]string

	width  int
	height int
}

// New creates the signed-out view. timer persists the resend cooldown.
func New(b Backend, timer *countdown.Timer, width, height int) Model {
	m := Model{
		backend: b,
		timer:   timer,
		fb:      &formBindings{phoneCode: "+1"},
		log:     zerolog.Nop(),
		width:   width,
		height:  height,
	}
	m.reset(ScreenLogin)
	return m
}

// Init loads the persisted cooldown and starts the form.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.loadCooldown())
}

// Show switches to screen with a fresh form.
func (m *Model) Show(screen Screen) tea.Cmd {
	m.reset(screen)
	return tea.Batch(m.form.Init(), m.loadCooldown())
}

// SetLogger sets the logger used for cooldown persistence failures.
func (m *Model) SetLogger(l zerolog.Logger) {
	m.log = l
}

// Screen returns the visible screen.
func (m Model) Screen() Screen {
	return m.screen
}

// ButtonLabel returns the primary button label.
func (m Model) ButtonLabel() string {
	return m.button
}

// SecondaryLabel returns the resend or send-OTP button label.
func (m Model) SecondaryLabel() string {
	return m.secondary
}

// SetUsername prefills the login form.
func (m *Model) SetUsername(username string) {
	m.fb.username = username
	if m.screen == ScreenLogin {
		m.form = m.buildForm()
	}
}

// SetEmail prefills the reset email.
func (m *Model) SetEmail(email string) {
	m.fb.email = email
}

func (m *Model) reset(screen Screen) {
	m.screen = screen
	m.busy = false
	m.otpSent = false
	m.fieldErrs = nil
	m.fb.password = ""
	m.fb.otp = ""
	m.fb.newPass = ""
	m.fb.confirm = ""
	m.button = idleLabel(screen, false)
	m.secondary = m.secondaryLabel()
	m.form = m.buildForm()
}

func idleLabel(screen Screen, otpSent bool) string {
	switch screen {
	case ScreenRegister:
		return LabelRegister
	case ScreenVerify:
		return LabelVerify
	case ScreenForgot:
		if otpSent {
			return LabelReset
		}
		return LabelSendOTP
	default:
		return LabelLogin
	}
}

// secondaryLabel renders the resend button, which shows the remaining
// cooldown while one runs.
func (m Model) secondaryLabel() string {
	if m.screen != ScreenVerify && !(m.screen == ScreenForgot && m.otpSent) {
		return ""
	}
	idle := LabelResend
	if m.screen == ScreenForgot {
		idle = LabelSendOTP
	}
	if m.timer == nil {
		return idle
	}
	if left := m.cooldown.Remaining(m.timer.Now()); left > 0 {
		return fmt.Sprintf("%s in %d seconds", LabelResend, left)
	}
	return idle
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.button = LabelLogin
			m.fieldErrs = api.FieldErrors(msg.err)
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(msg.err))
		}
		username, remember := msg.username, msg.remember
		return m, tea.Batch(
			ui.Success("Logged in"),
			func() tea.Msg { return LoggedInMsg{Username: username, Remember: remember} },
			ui.NavigateAfter(ui.RouteDashboard),
		)

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.button = LabelRegister
			m.fieldErrs = api.FieldErrors(msg.err)
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(msg.err))
		}
		return m, tea.Batch(ui.Success("Registered"), ui.NavigateAfter(ui.RouteVerify))

	case verifyDoneMsg:
		m.busy = false
		m.button = LabelVerify
		if msg.err != nil {
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(msg.err))
		}
		return m, tea.Batch(ui.Success("Email verified"), ui.NavigateAfter(ui.RouteDashboard))

	case resendDoneMsg:
		return m.handleResendDone(msg)

	case resetDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.button = LabelReset
			m.fieldErrs = api.FieldErrors(msg.err)
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(msg.err))
		}
		return m, tea.Batch(ui.Success(msg.resp.Message), ui.NavigateAfter(ui.RouteDashboard))

	case cooldownLoadedMsg:
		m.cooldown = msg.cooldown
		m.secondary = m.secondaryLabel()
		tick := m.tickIfRunning()
		return m, tick

	case cooldownTickMsg:
		m.ticking = false
		m.secondary = m.secondaryLabel()
		tick := m.tickIfRunning()
		return m, tick

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateForm(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.busy {
		return nil, true
	}
	switch {
	case m.screen == ScreenLogin && key.Matches(msg, authKeys.Register):
		return m.Show(ScreenRegister), true
	case m.screen == ScreenLogin && key.Matches(msg, authKeys.Forgot):
		return m.Show(ScreenForgot), true
	case m.screen != ScreenLogin && key.Matches(msg, authKeys.Back):
		return m.Show(ScreenLogin), true
	case key.Matches(msg, authKeys.Resend):
		return m.resend(), true
	}
	return nil, false
}

func (m Model) handleResendDone(msg resendDoneMsg) (Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if m.screen == ScreenForgot && !m.otpSent {
			m.button = LabelSendOTP
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(msg.err))
		}
		m.secondary = m.secondaryLabel()
		return m, failure(msg.err)
	}

	m.cooldown = msg.cooldown
	if m.screen == ScreenForgot && !m.otpSent {
		m.otpSent = true
		m.button = LabelReset
		m.form = m.buildForm()
		m.secondary = m.secondaryLabel()
		tick := m.tickIfRunning()
		return m, tea.Batch(m.form.Init(), ui.Success(msg.resp.Message), tick)
	}
	m.secondary = m.secondaryLabel()
	tick := m.tickIfRunning()
	return m, tea.Batch(ui.Success(msg.resp.Message), tick)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		if m.screen == ScreenLogin {
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		back := m.Show(ScreenLogin)
		return m, back
	}
	return m, cmd
}

// submit runs the primary action of the visible screen.
func (m Model) submit() (Model, tea.Cmd) {
	m.fieldErrs = nil
	switch m.screen {
	case ScreenLogin:
		m.busy = true
		m.button = LabelLoggingIn
		return m, m.login()

	case ScreenRegister:
		m.busy = true
		m.button = LabelRegistering
		return m, m.register()

	case ScreenVerify:
		if !ValidOTP(m.fb.otp) {
			m.fb.otp = ""
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(ErrInvalidOTP))
		}
		m.busy = true
		return m, m.verify()

	case ScreenForgot:
		if !m.otpSent {
			m.busy = true
			m.button = LabelSending
			return m, m.sendOTP()
		}
		if !ValidOTP(m.fb.otp) {
			m.fb.otp = ""
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), failure(ErrInvalidOTP))
		}
		m.busy = true
		m.button = LabelResetting
		return m, m.resetPassword()
	}
	return m, nil
}

// resend asks for a new verification code or reset OTP once the
// cooldown has run out.
func (m *Model) resend() tea.Cmd {
	switch {
	case m.screen == ScreenVerify:
	case m.screen == ScreenForgot && m.otpSent:
	default:
		return nil
	}
	if m.timer != nil && !m.cooldown.Expired(m.timer.Now()) {
		return nil
	}
	m.busy = true
	if m.screen == ScreenVerify {
		m.secondary = LabelResending
		b, timer, lg := m.backend, m.timer, m.log
		return func() tea.Msg {
			ctx := context.Background()
			resp, err := b.ResendVerification(ctx)
			if err != nil {
				return resendDoneMsg{err: err}
			}
			return resendDoneMsg{resp: resp, cooldown: startCooldown(ctx, timer, lg)}
		}
	}
	m.secondary = LabelSending
	return m.sendOTP()
}

// ValidOTP reports whether code is exactly six ASCII digits.
func ValidOTP(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m Model) login() tea.Cmd {
	b := m.backend
	username, password, remember := strings.TrimSpace(m.fb.username), m.fb.password, m.fb.remember
	return func() tea.Msg {
		_, err := b.Authenticate(context.Background(), username, password, remember)
		return loginDoneMsg{username: username, remember: remember, err: err}
	}
}

func (m Model) register() tea.Cmd {
	b := m.backend
	reg := model.Registration{
		Username:    strings.TrimSpace(m.fb.username),
		Email:       strings.TrimSpace(m.fb.email),
		FirstName:   strings.TrimSpace(m.fb.firstName),
		LastName:    strings.TrimSpace(m.fb.lastName),
		PhoneCode:   strings.TrimSpace(m.fb.phoneCode),
		PhoneNumber: strings.TrimSpace(m.fb.phone),
		Password:    m.fb.password,
		Terms:       m.fb.terms,
		Privacy:     m.fb.privacy,
	}
	return func() tea.Msg {
		_, err := b.Register(context.Background(), reg)
		return registerDoneMsg{err: err}
	}
}

func (m Model) verify() tea.Cmd {
	b := m.backend
	otp := m.fb.otp
	return func() tea.Msg {
		_, err := b.VerifyEmail(context.Background(), otp)
		return verifyDoneMsg{err: err}
	}
}

func (m Model) sendOTP() tea.Cmd {
	b, timer, lg := m.backend, m.timer, m.log
	email := strings.TrimSpace(m.fb.email)
	return func() tea.Msg {
		ctx := context.Background()
		resp, err := b.RequestPasswordReset(ctx, email)
		if err != nil {
			return resendDoneMsg{err: err}
		}
		return resendDoneMsg{resp: resp, cooldown: startCooldown(ctx, timer, lg)}
	}
}

func (m Model) resetPassword() tea.Cmd {
	b := m.backend
	req := model.PasswordReset{
		Email:           strings.TrimSpace(m.fb.email),
		OTP:             m.fb.otp,
		NewPassword:     m.fb.newPass,
		ConfirmPassword: m.fb.confirm,
	}
	return func() tea.Msg {
		resp, err := b.ResetPassword(context.Background(), req)
		return resetDoneMsg{resp: resp, err: err}
	}
}

// startCooldown replaces any running cooldown with a fresh one.
func startCooldown(ctx context.Context, timer *countdown.Timer, lg zerolog.Logger) countdown.Countdown {
	if timer == nil {
		return countdown.Countdown{}
	}
	if err := timer.Clear(ctx); err != nil {
		lg.Warn().Err(err).Msg("Clearing resend cooldown failed")
	}
	c, err := timer.Start(ctx, countdown.DefaultCooldown)
	if err != nil {
		lg.Warn().Err(err).Msg("Saving resend cooldown failed")
		return countdown.Start(timer.Now(), countdown.DefaultCooldown)
	}
	return c
}

func (m Model) loadCooldown() tea.Cmd {
	timer, lg := m.timer, m.log
	if timer == nil {
		return nil
	}
	return func() tea.Msg {
		c, err := timer.Load(context.Background())
		if err != nil {
			lg.Warn().Err(err).Msg("Loading resend cooldown failed")
		}
		return cooldownLoadedMsg{cooldown: c}
	}
}

// tickIfRunning keeps a single once-a-second tick alive while the
// cooldown runs.
func (m *Model) tickIfRunning() tea.Cmd {
	if m.ticking || m.timer == nil || m.cooldown.Expired(m.timer.Now()) {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return cooldownTickMsg{} })
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func (m Model) buildForm() *huh.Form {
	var groups []*huh.Group

	switch m.screen {
	case ScreenRegister:
		groups = append(groups,
			huh.NewGroup(
				huh.NewInput().Title("Username").Value(&m.fb.username).Validate(required("username")),
				huh.NewInput().Title("Email").Value(&m.fb.email).Validate(required("email")),
				huh.NewInput().Title("First name").Value(&m.fb.firstName).Validate(required("first name")),
				huh.NewInput().Title("Last name").Value(&m.fb.lastName).Validate(required("last name")),
				huh.NewInput().Title("Phone code").Placeholder("+1").Value(&m.fb.phoneCode),
				huh.NewInput().Title("Phone").Value(&m.fb.phone),
				huh.NewInput().Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&m.fb.password).
					Validate(required("password")),
			),
			huh.NewGroup(
				huh.NewConfirm().Title("I accept the terms of service").Value(&m.fb.terms),
				huh.NewConfirm().Title("I accept the privacy policy").Value(&m.fb.privacy),
			),
		)

	case ScreenVerify:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Verification code").
				Description("Enter the 6-digit code sent to your email.").
				CharLimit(6).
				Value(&m.fb.otp),
		))

	case ScreenForgot:
		if !m.otpSent {
			groups = append(groups, huh.NewGroup(
				huh.NewInput().Title("Email").Value(&m.fb.email).Validate(required("email")),
			))
			break
		}
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Code").CharLimit(6).Value(&m.fb.otp),
			huh.NewInput().Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.newPass).
				Validate(required("new password")),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(required("confirm password")),
		))

	default:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Username").Value(&m.fb.username).Validate(required("username")),
			huh.NewInput().Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("password")),
			huh.NewConfirm().Title("Remember me").Value(&m.fb.remember),
		))
	}

	return huh.NewForm(groups...).
		WithShowHelp(false).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

var titles = map[Screen]string{
	ScreenLogin:    "Sign in",
	ScreenRegister: "Create an account",
	ScreenVerify:   "Verify your email",
	ScreenForgot:   "Reset your password",
}

// View renders the visible form with its buttons and hints.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(titles[m.screen]))
	b.WriteString("\n")
	if m.form != nil && !m.busy {
		b.WriteString(m.form.View())
		b.WriteString("\n")
	}

	if len(m.fieldErrs) > 0 {
		names := make([]string, 0, len(m.fieldErrs))
		for name := range m.fieldErrs {
			names = append(names, name)
		}
		sort.Strings(names)
		errStyle := lipgloss.NewStyle().Foreground(theme.ColorRed)
		for _, name := range names {
			b.WriteString(errStyle.Render(fmt.Sprintf("%s: %s", name, m.fieldErrs[name])))
			b.WriteString("\n")
		}
	}

	b.WriteString(theme.SelectedItemStyle.Render("[ " + m.button + " ]"))
	if m.secondary != "" {
		b.WriteString("  ")
		b.WriteString(theme.MutedStyle.Render("[ " + m.secondary + " ]"))
	}
	b.WriteString("\n\n")

	var hints []string
	switch m.screen {
	case ScreenLogin:
		hints = []string{"enter submit", "ctrl+r register", "ctrl+f forgot password"}
	case ScreenVerify:
		hints = []string{"enter verify", "ctrl+o resend code", "esc back"}
	case ScreenForgot:
		if m.otpSent {
			hints = []string{"enter reset", "ctrl+o resend code", "esc back"}
		} else {
			hints = []string{"enter send code", "esc back"}
		}
	default:
		hints = []string{"enter submit", "esc back"}
	}
	b.WriteString(theme.HelpStyle.Render(strings.Join(hints, " | ")))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
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
	h := m.height - 8
	if h < 10 {
		h = 10
	}
	return h
}

// failure reports err as a toast. Signed-out screens never treat a 401 as
// an expired session.
func failure(err error) tea.Cmd {
	return ui.Notify(model.LevelError, ui.ErrorText(err))
}

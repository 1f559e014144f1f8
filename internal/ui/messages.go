package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/easymail/internal/api"
	composer "github.com/nhle/easymail/internal/compose"
	mailbox "github.com/nhle/easymail/internal/inbox"
	"github.com/nhle/easymail/internal/model"
)

// Route names a top-level screen. The values match the web client's paths.
type Route string

const (
	RouteLogin     Route = "/login"
	RouteRegister  Route = "/register"
	RouteVerify    Route = "/verify"
	RouteForgot    Route = "/forgot-password"
	RouteDashboard Route = "/dashboard"
	RouteInbox     Route = "/inbox"
	RouteCompose   Route = "/compose"
	RouteContacts  Route = "/contacts"
	RouteHistory   Route = "/history"
	RouteLinks     Route = "/links"
	RouteProfile   Route = "/profile"
)

// NavigateDelay is how long a success toast stays before a redirect.
const NavigateDelay = time.Second

// ToastDuration is how long a toast replaces the key hints.
const ToastDuration = 4 * time.Second

// Toast is a transient notification shown in the status bar.
type Toast struct {
	Level model.Level
	Text  string
}

// ToastMsg asks the root model to show and log a toast.
type ToastMsg Toast

// NavigateMsg asks the root model to switch screens.
type NavigateMsg struct {
	Route Route

	// ChatID reopens a chat when the route is RouteCompose.
	ChatID int
}

// SessionExpiredMsg is sent when the backend no longer accepts the
// session cookie.
type SessionExpiredMsg struct{}

// Notify returns a command that emits a toast.
func Notify(level model.Level, text string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Level: level, Text: text}
	}
}

// Success emits a success toast.
func Success(text string) tea.Cmd { return Notify(model.LevelSuccess, text) }

// Info emits an informational toast.
func Info(text string) tea.Cmd { return Notify(model.LevelInfo, text) }

// Warning emits a warning toast.
func Warning(text string) tea.Cmd { return Notify(model.LevelWarning, text) }

var displayText = []struct {
	err  error
	text string
}{
	{composer.ErrNoAccount, "Please select one of your email addresses."},
	{composer.ErrMissingPrompt, "Please enter your prompt and select at least one recipient."},
	{composer.ErrEmptyMessage, "Please enter a message"},
	{composer.ErrNoSendAccount, "Please select an email account."},
	{composer.ErrNoRecipients, "Please select at least one recipient."},
	{composer.ErrAlreadySent, "This email has already been sent."},
	{composer.ErrNoChat, "No email has been generated yet."},
	{composer.ErrNoProposal, "No paraphrase is pending."},
	{composer.ErrEmptyChat, "The chat was empty, and it has been deleted automatically."},
	{mailbox.ErrEmptyReply, "Reply content cannot be empty."},
}

// ErrorText returns the text to show for err. Backend errors carry their
// own message and the compose and inbox sentinels have fixed wording.
// Anything else uses its error string.
func ErrorText(err error) string {
	if _, ok := api.AsError(err); ok {
		return api.ErrorMessage(err, api.DefaultErrorMessage)
	}
	for _, d := range displayText {
		if errors.Is(err, d.err) {
			return d.text
		}
	}
	if err == nil || err.Error() == "" {
		return api.DefaultErrorMessage
	}
	return err.Error()
}

// UserError returns err with its display text, for form validators that
// print the error string directly.
func UserError(err error) error {
	return errors.New(ErrorText(err))
}

// Failure turns err into an error toast carrying the backend message, or
// a session-expired signal when the session is no longer accepted.
func Failure(err error) tea.Cmd {
	if api.IsSessionExpired(err) {
		return tea.Batch(
			Notify(model.LevelError, api.ErrorMessage(err, "Session expired")),
			func() tea.Msg { return SessionExpiredMsg{} },
		)
	}
	return Notify(model.LevelError, ErrorText(err))
}

// NavigateAfter returns a command that navigates to r once
// NavigateDelay has passed.
func NavigateAfter(r Route) tea.Cmd {
	return tea.Tick(NavigateDelay, func(time.Time) tea.Msg {
		return NavigateMsg{Route: r}
	})
}

// Navigate returns a command that navigates immediately.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

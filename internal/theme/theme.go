package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps reader and preview panes.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is used for view titles above a list or form.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	MarginBottom(1)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// UnreadStyle marks unread inbox rows.
var UnreadStyle = lipgloss.NewStyle().Bold(true)

// BucketHeaderStyle renders date bucket separators in the inbox.
var BucketHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta).
	PaddingLeft(1)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// MutedStyle is used for secondary text such as dates and addresses.
var MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

// ChatRoleStyle returns the label style for a transcript role.
func ChatRoleStyle(role string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch role {
	case "user":
		return base.Foreground(ColorBlue)
	case "email":
		return base.Foreground(ColorGreen)
	case "bot":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

// LevelStyle returns a color-coded style for a toast level.
func LevelStyle(level model.Level) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch level {
	case model.LevelSuccess:
		return base.Foreground(ColorGreen)
	case model.LevelError:
		return base.Foreground(ColorRed)
	case model.LevelWarning:
		return base.Foreground(ColorYellow)
	case model.LevelInfo:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// ServiceLabelStyle returns a color-coded style for a linked account
// provider.
func ServiceLabelStyle(service model.Service) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch service {
	case model.ServiceGoogle:
		return base.Foreground(ColorRed)
	case model.ServiceMicrosoft:
		return base.Foreground(ColorBlue)
	case model.ServiceManual:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar with the title on the left and the
// signed-in user and unread counters on the right.
func (l Layout) RenderHeader(title, right string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	rightRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(right)

	return l.fill(theme.HeaderStyle, titleRendered, rightRendered)
}

// RenderStatusBar renders the bottom bar. A non-empty toast replaces the
// keyboard hints.
func (l Layout) RenderStatusBar(hints string, toast Toast) string {
	if toast.Text != "" {
		rendered := theme.LevelStyle(toast.Level).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(toast.Text)
		return l.fill(theme.StatusBarStyle, rendered, "")
	}
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// fill pads the gap between left and right with the style's background.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

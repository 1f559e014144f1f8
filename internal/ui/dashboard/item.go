package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/theme"
)

// Untitled labels a chat that was never named.
const Untitled = "Untitled chat"

// ChatItem wraps a model.Chat so it can be used in a bubbles/list.
type ChatItem struct {
	Chat model.Chat
}

// FilterValue returns the string used for fuzzy filtering.
func (i ChatItem) FilterValue() string { return i.Title() }

// Title returns the chat name or the untitled label.
func (i ChatItem) Title() string {
	if strings.TrimSpace(i.Chat.Name) == "" {
		return Untitled
	}
	return i.Chat.Name
}

// Description returns the sending account and the sent flag.
func (i ChatItem) Description() string {
	if i.Chat.IsSent {
		return "sent"
	}
	return "draft"
}

// ItemDelegate implements list.ItemDelegate for the recent chats list.
type ItemDelegate struct {
	// senders maps linked account ids to their address. Shared by
	// reference with the dashboard Model so updates are visible.
	senders map[int]string
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single chat line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(ChatItem)
	if !ok {
		return
	}

	prefix := "○"
	status := lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("draft")
	if ci.Chat.IsSent {
		prefix = "✓"
		status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("sent")
	}

	sender := ""
	if ci.Chat.OAuthID != nil {
		if addr, ok := d.senders[*ci.Chat.OAuthID]; ok {
			sender = "  " + theme.MutedStyle.Render(addr)
		}
	}

	line := fmt.Sprintf("%s %s %s%s", prefix, status, ci.Title(), sender)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

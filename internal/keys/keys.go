package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Views
	Inbox    key.Binding
	Compose  key.Binding
	Contacts key.Binding
	History  key.Binding
	Links    key.Binding
	Profile  key.Binding

	// List actions
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	LoadMore key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Inbox selection
	NextFolder  key.Binding
	PrevFolder  key.Binding
	NextAccount key.Binding

	// Message actions
	Reply      key.Binding
	SmartReply key.Binding
	ToggleRead key.Binding

	// Compose actions
	Send       key.Binding
	Paraphrase key.Binding
	Export     key.Binding
	NewChat    key.Binding
	Details    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "inbox"),
		),
		Compose: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "compose"),
		),
		Contacts: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "contacts"),
		),
		History: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "history"),
		),
		Links: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "accounts"),
		),
		Profile: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "profile"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous page"),
		),
		NextFolder: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next folder"),
		),
		PrevFolder: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous folder"),
		),
		NextAccount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "next account"),
		),
		Reply: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reply"),
		),
		SmartReply: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "smart reply"),
		),
		ToggleRead: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toggle read"),
		),
		Send: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "send"),
		),
		Paraphrase: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "paraphrase"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export .eml"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new chat"),
		),
		Details: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "draft details"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Command, k.Help, k.Refresh},
		{k.Inbox, k.Compose, k.Contacts, k.History, k.Links, k.Profile},
		{k.New, k.Edit, k.Delete, k.LoadMore, k.NextPage, k.PrevPage},
		{k.NextFolder, k.PrevFolder, k.NextAccount},
		{k.Reply, k.SmartReply, k.ToggleRead},
		{k.Send, k.Paraphrase, k.Export, k.NewChat, k.Details},
	}
}

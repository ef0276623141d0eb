package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console-wide shortcuts. List keys live in components.ListKeyMap.
type KeyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Increment key.Binding
	Decrement key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	list listKeys
}

// listKeys adapts the list bindings so the help view can show them.
type listKeys struct {
	search, page, filter, window, sort key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "add stock"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "remove stock"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		list: listKeys{
			search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
			page:   key.NewBinding(key.WithKeys("n", "p"), key.WithHelp("n/p", "page")),
			filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "amount filter")),
			window: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date filter")),
			sort:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9", "sort column")),
		},
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.list.search, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Refresh},
		{k.list.search, k.list.page, k.list.sort},
		{k.list.filter, k.list.window, k.Increment, k.Decrement},
		{k.Logout, k.Help, k.Quit, k.ForceQuit},
	}
}

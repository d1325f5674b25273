package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings of the browser.
type keyMap struct {
	Quit    key.Binding
	Focus   key.Binding
	Search  key.Binding
	Confirm key.Binding
	Back    key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	NewItem      key.Binding
	RefreshStats key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
		),
		NewItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "add random item"),
		),
		RefreshStats: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh stats"),
		),
	}
}

func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Search, k.Up, k.Down, k.Confirm, k.NewItem, k.RefreshStats, k.Quit}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}

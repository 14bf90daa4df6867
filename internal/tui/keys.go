package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Navigation
	Dashboard key.Binding
	Tasks     key.Binding
	Clients   key.Binding
	Reports   key.Binding

	// Actions
	Select key.Binding
	New    key.Binding
	Delete key.Binding
	Save   key.Binding

	// Movement
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	NextField key.Binding
	PrevField key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Dashboard: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
	Tasks:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tasks")),
	Clients:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clients")),
	Reports:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reports")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous month")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next month")),
	PrevYear:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous year")),
	NextYear:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next year")),
	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	StartStop   key.Binding
	PauseResume key.Binding
	Skip        key.Binding
	Reload      key.Binding
	NextTask    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	StartStop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start/stop"),
	),
	PauseResume: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause/resume"),
	),
	Skip: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "skip"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload calendars"),
	),
	NextTask: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new task"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartStop, k.PauseResume, k.NextTask, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartStop, k.PauseResume, k.Skip},
		{k.Reload, k.NextTask},
		{k.Help, k.Quit},
	}
}

package monitor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit  key.Binding
	Theme key.Binding
	Hour  key.Binding
	Day   key.Binding
	Week  key.Binding
	Left  key.Binding
	Right key.Binding
	Home  key.Binding
	End   key.Binding
	Help  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Theme, k.Hour, k.Day, k.Week, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hour, k.Day, k.Week},
		{k.Left, k.Right, k.Home, k.End},
		{k.Theme, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Theme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Hour: key.NewBinding(
		key.WithKeys("1", "h"),
		key.WithHelp("1/h", "hour"),
	),
	Day: key.NewBinding(
		key.WithKeys("2", "d"),
		key.WithHelp("2/d", "day"),
	),
	Week: key.NewBinding(
		key.WithKeys("3", "w"),
		key.WithHelp("3/w", "week"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "scrub back"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "scrub forward"),
	),
	Home: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "oldest"),
	),
	End: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "newest"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
}

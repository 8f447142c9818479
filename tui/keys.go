package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Play      key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKey(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

var keys = keyMap{
	Left:      newKey("step left", "h", "left"),
	Right:     newKey("step right", "l", "right"),
	Toggle:    newKey("toggle step", "space", " "),
	Play:      newKey("play/stop", "p", "enter"),
	TempoUp:   newKey("tempo +1", "+", "="),
	TempoDown: newKey("tempo -1", "-", "_"),
	Help:      newKey("more keys", "?"),
	Quit:      newKey("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.TempoUp, k.TempoDown, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Toggle},
		{k.Play, k.TempoUp, k.TempoDown},
		{k.Help, k.Quit},
	}
}

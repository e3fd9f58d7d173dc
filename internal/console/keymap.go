package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap - клавиши консоли оператора.
type KeyMap struct {
	Refresh    key.Binding
	Claim      key.Binding
	Distribute key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		Claim: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "claim fees"),
		),
		Distribute: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "execute distribution"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Claim, k.Distribute, k.Quit}
}

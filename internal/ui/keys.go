package ui

import "github.com/charmbracelet/bubbles/key"

// modalKeyMap holds the learn modal bindings.
type modalKeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Press     key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func newModalKeyMap() modalKeyMap {
	return modalKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Press: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "press button"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// appKeyMap holds the bindings outside the modal.
type appKeyMap struct {
	Learn key.Binding
	Back  key.Binding
	Copy  key.Binding
	Quit  key.Binding
	Force key.Binding
}

func newAppKeyMap() appKeyMap {
	return appKeyMap{
		Learn: key.NewBinding(
			key.WithKeys("l", "enter"),
			key.WithHelp("l", "learn microagent"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Force: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Quote actions
	NewQuote     key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	AddQuote     key.Binding
	Export       key.Binding
	Import       key.Binding
	SyncNow      key.Binding
	ViewLogs     key.Binding

	// Navigation (log view)
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	ToggleFollow key.Binding

	// Forms
	Tab      key.Binding
	ShiftTab key.Binding
	Confirm  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		NewQuote: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n", "New quote"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("f", "right"),
			key.WithHelp("f", "Next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("F", "left"),
			key.WithHelp("F", "Previous category"),
		),
		AddQuote: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add quote"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export quotes"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Import quotes"),
		),
		SyncNow: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sync now"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle log view"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),

		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewQuote, k.NextCategory, k.AddQuote, k.SyncNow, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewQuote, k.NextCategory, k.PrevCategory},
		{k.AddQuote, k.Import, k.Export, k.SyncNow},
		{k.ViewLogs, k.Up, k.Down, k.Top, k.Bottom, k.ToggleFollow},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

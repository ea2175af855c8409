package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Quotes",
			items: []helpItem{
				{"n/Space", "Show another quote"},
				{"f/F", "Next/previous category"},
				{"a", "Add quote"},
			},
		},
		{
			title: "Data",
			items: []helpItem{
				{"i", "Import JSON/YAML"},
				{"x", "Export JSON/YAML"},
				{"s", "Sync from server now"},
			},
		},
		{
			title: "Logs",
			items: []helpItem{
				{"l", "Toggle log view"},
				{"Space", "Toggle follow mode"},
				{"j/k", "Scroll"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return m.renderModal(b.String(), 40)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quotebook/internal/quotes"
)

const emptyCategoryText = "No quotes available for this category."

// handleQuoteKey processes keyboard input for the quote view.
func (m Model) handleQuoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewQuote):
		m.pickQuote()
	case key.Matches(msg, m.keys.NextCategory):
		m.cycleCategory(1)
	case key.Matches(msg, m.keys.PrevCategory):
		m.cycleCategory(-1)
	}
	return m, nil
}

// pickQuote shows a random quote from the selected category.
func (m *Model) pickQuote() {
	if m.selector == nil {
		return
	}
	m.current, m.hasQuote = m.selector.PickRandom(m.category)
}

func (m Model) matchesCategory(q quotes.Quote) bool {
	return m.category == quotes.AllCategories || q.Category == m.category
}

// categoryOptions returns the selectable categories, "All" first.
func (m Model) categoryOptions() []string {
	if m.repo == nil {
		return []string{quotes.AllCategories}
	}
	return m.repo.Categories()
}

// cycleCategory moves the category selection by delta and shows a quote
// from the new category.
func (m *Model) cycleCategory(delta int) {
	options := m.categoryOptions()
	idx := slices.Index(options, m.category)
	if idx < 0 {
		idx = 0
	}
	idx = (idx + delta + len(options)) % len(options)
	m.category = options[idx]
	m.pickQuote()
}

// refreshAfterChange revalidates the selected category after the collection
// changed and shows a fresh quote.
func (m *Model) refreshAfterChange() {
	if m.repo != nil && m.category != quotes.AllCategories && !m.repo.HasCategory(m.category) {
		m.category = quotes.AllCategories
	}
	m.pickQuote()
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	count := 0
	cats := 0
	if m.repo != nil {
		count = m.repo.Len()
		cats = len(m.repo.Categories()) - 1
	}

	parts := []string{
		bg.Render("quotebook", styles.Logo),
		bg.Render(fmt.Sprintf("%d quotes", count), styles.Text),
		bg.Render(fmt.Sprintf("%d categories", cats), styles.MutedText),
	}
	if m.engine != nil {
		parts = append(parts, m.renderSyncBadge(styles, bg))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

// renderCommandBar renders the k9s-style key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var bindings []key.Binding
	if m.currentView == ViewLogs {
		bindings = []key.Binding{m.keys.ViewLogs, m.keys.ToggleFollow, m.keys.Top, m.keys.Bottom, m.keys.Help, m.keys.Quit}
	} else {
		bindings = m.keys.ShortHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render("<"+h.Key+">", styles.AccentText)+bg.Space()+bg.Render(h.Desc, styles.MutedText))
	}
	return bg.FillLine(strings.Join(parts, bg.Spaces(2)), m.width)
}

// renderQuoteView renders the quote card, category bar and notification.
func (m Model) renderQuoteView() string {
	styles := m.theme.Styles()

	cardWidth := min(max(m.width-8, 20), 80)
	var body string
	if m.hasQuote {
		text := styles.Text.Italic(true).Width(cardWidth - 4).Render("“" + m.current.Text + "”")
		attribution := styles.AccentText.Render("— " + m.current.Category)
		body = lipgloss.JoinVertical(lipgloss.Right, text, "", attribution)
	} else {
		body = styles.MutedText.Render(emptyCategoryText)
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(cardWidth).
		Render(body)

	sections := []string{card, "", m.renderCategoryBar(styles)}
	if n := m.renderNotice(styles); n != "" {
		sections = append(sections, "", n)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, max(m.height-2, 1), lipgloss.Center, lipgloss.Center, content)
}

// renderCategoryBar lists the categories with the selection highlighted.
func (m Model) renderCategoryBar(styles Styles) string {
	options := m.categoryOptions()
	parts := make([]string, 0, len(options))
	for _, c := range options {
		if c == m.category {
			parts = append(parts, styles.Selected.Padding(0, 1).Render(c))
			continue
		}
		parts = append(parts, styles.MutedText.Padding(0, 1).Render(c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

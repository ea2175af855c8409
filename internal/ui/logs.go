package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quotebook/internal/logtail"
)

const logTailLines = 500

type logLinesMsg struct {
	lines []string
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and reloads its content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}
	// header, command bar, status line and box borders
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)

	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

// refreshLogs reads the tail of the log file off the update loop.
func (m *Model) refreshLogs() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logLinesMsg{lines: []string{"Error reading log: " + err.Error()}}
		}
		return logLinesMsg{lines: logtail.FormatLines(lines)}
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		if m.logPath == "" {
			return styles.MutedText.Render("Logging to a file is disabled.")
		}
		return styles.MutedText.Render("No log entries yet.")
	}

	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = m.levelStyle(line, styles).Render(line)
	}
	return strings.Join(out, "\n")
}

// levelStyle colors a formatted line by its level token.
func (m Model) levelStyle(line string, styles Styles) lipgloss.Style {
	line = " " + line + " "
	switch {
	case strings.Contains(line, " ERROR "), strings.Contains(line, " FATAL "), strings.Contains(line, " DPANIC "):
		return styles.DangerText
	case strings.Contains(line, " WARN "):
		return styles.WarningText
	case strings.Contains(line, " DEBUG "):
		return styles.FaintText
	default:
		return styles.Text
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	title := styles.AccentText.Bold(true).Render("Log")
	if m.logPath != "" {
		title += styles.MutedText.Render(" " + m.logPath)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(max(m.width-2, 1)).
		Render(m.logViewport.View())

	follow := "follow: off"
	if m.follow {
		follow = "follow: on"
	}
	status := styles.FaintText.Render(follow)
	if n := m.notice.text; n != "" {
		status += styles.FaintText.Render("  ·  ") + styles.MutedText.Render(n)
	}
	return title + "\n" + box + "\n" + status
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.follow = false
	}
	return m, nil
}

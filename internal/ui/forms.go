package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/quotes"
)

const missingFieldsText = "Please enter both quote text and category."

// fileDoneMsg reports the outcome of an import or export.
type fileDoneMsg struct {
	text    string
	level   noticeLevel
	refresh bool // collection changed
}

func (m *Model) initAddInputs() {
	text := textinput.New()
	text.Placeholder = "Enter a new quote"
	text.CharLimit = 500
	text.Width = 50

	category := textinput.New()
	category.Placeholder = "Enter quote category"
	category.CharLimit = 50
	category.Width = 50

	m.addInputs[0] = text
	m.addInputs[1] = category
}

func (m *Model) initFileInput() {
	ti := textinput.New()
	ti.Placeholder = quotes.ExportFilename
	ti.CharLimit = 4096
	ti.Width = 50
	m.fileInput = ti
}

// openAddForm shows the add quote form with empty fields. The category is
// prefilled when a specific category is selected.
func (m *Model) openAddForm() {
	m.addInputs[0].SetValue("")
	m.addInputs[1].SetValue("")
	if m.category != quotes.AllCategories {
		m.addInputs[1].SetValue(m.category)
	}
	m.addFocusIdx = 0
	m.addInputs[0].Focus()
	m.addInputs[1].Blur()
	m.formErr = ""
	m.overlay = overlayAdd
}

// handleAddKey handles keyboard input for the add quote form.
func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.overlay = overlayNone
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		return m.submitAddForm()

	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab),
		msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		m.addInputs[m.addFocusIdx].Blur()
		m.addFocusIdx = (m.addFocusIdx + 1) % len(m.addInputs)
		m.addInputs[m.addFocusIdx].Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.addInputs[m.addFocusIdx], cmd = m.addInputs[m.addFocusIdx].Update(msg)
	return m, cmd
}

// submitAddForm adds the quote. Validation errors keep the form open.
func (m Model) submitAddForm() (tea.Model, tea.Cmd) {
	q, err := m.repo.Add(m.addInputs[0].Value(), m.addInputs[1].Value())
	switch {
	case errors.Is(err, quotes.ErrValidation):
		m.formErr = missingFieldsText
		return m, nil
	case err != nil:
		m.overlay = overlayNone
		m.setNotice("Could not save quote: "+err.Error(), noticeDanger)
		return m, nil
	}

	m.overlay = overlayNone
	m.formErr = ""
	m.setNotice("Quote added to "+q.Category+".", noticeSuccess)
	m.refreshAfterChange()

	if m.publish && m.engine != nil {
		m.engine.PublishAsync(q)
	}
	return m, nil
}

// openFileForm shows the path prompt for an import or export.
func (m *Model) openFileForm(kind overlay) {
	path := m.prefs.LastFile
	if path == "" && kind == overlayExport {
		path = quotes.ExportFilename
	}
	m.fileInput.SetValue(path)
	m.fileInput.CursorEnd()
	m.fileInput.Focus()
	m.formErr = ""
	m.overlay = kind
}

// handleFileKey handles keyboard input for the import/export prompt.
func (m Model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.fileInput.Blur()
		m.overlay = overlayNone
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		path := strings.TrimSpace(m.fileInput.Value())
		if path == "" {
			m.formErr = "Please enter a file path."
			return m, nil
		}
		kind := m.overlay
		m.fileInput.Blur()
		m.overlay = overlayNone
		m.prefs.LastFile = path
		m.savePrefs()
		if kind == overlayImport {
			return m, importCmd(m.repo, m.logger, path)
		}
		return m, exportCmd(m.repo, m.logger, path)
	}

	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	return m, cmd
}

// exportCmd writes the collection to path. The format follows the file
// extension; anything but .yaml/.yml is JSON.
func exportCmd(repo *quotes.Repository, logger *zap.Logger, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := quotes.Encode(repo.Quotes(), quotes.FormatForPath(path))
		if err != nil {
			return fileDoneMsg{text: "Export failed: " + err.Error(), level: noticeDanger}
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fileDoneMsg{text: "Export failed: " + err.Error(), level: noticeDanger}
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Warn("export failed", zap.String("path", path), zap.Error(err))
			return fileDoneMsg{text: "Export failed: " + err.Error(), level: noticeDanger}
		}
		logger.Info("quotes exported", zap.String("path", path), zap.Int("count", repo.Len()))
		return fileDoneMsg{text: fmt.Sprintf("Exported %d quotes to %s.", repo.Len(), path), level: noticeSuccess}
	}
}

// importCmd appends the valid records of the file at path.
func importCmd(repo *quotes.Repository, logger *zap.Logger, path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fileDoneMsg{text: "Import failed: " + err.Error(), level: noticeDanger}
		}
		res, err := repo.Import(raw, quotes.FormatForPath(path))
		switch {
		case errors.Is(err, quotes.ErrParse):
			logger.Warn("import rejected", zap.String("path", path), zap.Error(err))
			return fileDoneMsg{text: "Invalid file: the document could not be parsed.", level: noticeDanger}
		case errors.Is(err, quotes.ErrValidation):
			return fileDoneMsg{text: "Invalid file: expected a list of quotes.", level: noticeDanger}
		case errors.Is(err, quotes.ErrEmptyImport):
			return fileDoneMsg{text: fmt.Sprintf("No valid quotes found (%d dropped).", res.Dropped), level: noticeWarning}
		case err != nil:
			return fileDoneMsg{text: "Import failed: " + err.Error(), level: noticeDanger}
		}
		text := fmt.Sprintf("Imported %d quotes.", res.Imported)
		if res.Dropped > 0 {
			text = fmt.Sprintf("Imported %d quotes, %d invalid records skipped.", res.Imported, res.Dropped)
		}
		return fileDoneMsg{text: text, level: noticeSuccess, refresh: true}
	}
}

// renderAddForm renders the add quote modal.
func (m Model) renderAddForm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add Quote"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	labels := [2]string{"Quote:    ", "Category: "}
	for i, label := range labels {
		if m.addFocusIdx == i {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(m.addInputs[i].View())
		b.WriteString("\n\n")
	}

	if m.formErr != "" {
		b.WriteString(styles.DangerText.Render(m.formErr))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Add  •  Tab: Next field  •  Esc: Cancel"))

	return m.renderModal(b.String(), 66)
}

// renderFileForm renders the import/export path prompt.
func (m Model) renderFileForm() string {
	styles := m.theme.Styles()

	title, hint := "Export Quotes", "Writes JSON, or YAML for .yaml/.yml paths."
	if m.overlay == overlayImport {
		title, hint = "Import Quotes", "Appends valid quotes from a JSON or YAML file."
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render(hint))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("Path: "))
	b.WriteString(m.fileInput.View())
	b.WriteString("\n\n")
	if m.formErr != "" {
		b.WriteString(styles.DangerText.Render(m.formErr))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Confirm  •  Esc: Cancel"))

	return m.renderModal(b.String(), 66)
}

// renderModal centers content in a bordered box.
func (m Model) renderModal(content string, width int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

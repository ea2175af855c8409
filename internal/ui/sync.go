package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quotebook/internal/syncer"
)

const syncNotice = "Quotes synced from server (server data takes precedence)."

// Sync badge states, also used as StatusColors keys.
const (
	statusIdle    = "idle"
	statusSyncing = "syncing"
	statusSynced  = "synced"
	statusFailed  = "failed"
	statusOffline = "offline"
)

type syncDoneMsg struct {
	result syncer.Result
	err    error
}

// startSync runs a manual sync in the background.
func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.engine == nil {
		m.setNotice("Sync is not configured.", noticeWarning)
		return m, nil
	}
	cmds := []tea.Cmd{syncCmd(m.ctx, m.engine)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func syncCmd(ctx context.Context, engine *syncer.Engine) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Sync(ctx)
		return syncDoneMsg{result: res, err: err}
	}
}

// handleSyncDone reports the outcome of a manual sync.
func (m Model) handleSyncDone(msg syncDoneMsg) (tea.Model, tea.Cmd) {
	if m.engine != nil {
		m.snapshot = m.engine.Status().Snapshot()
	}
	m.spinning = m.snapshot.Syncing

	switch {
	case errors.Is(msg.err, syncer.ErrSyncInProgress):
		m.setNotice("A sync is already in progress.", noticeInfo)
	case msg.err != nil:
		m.setNotice("Sync failed: "+msg.err.Error(), noticeDanger)
	default:
		m.setNotice(syncNotice, noticeSuccess)
		m.refreshAfterChange()
	}
	return m, nil
}

// syncStatus classifies the snapshot for the header badge.
func (m Model) syncStatus() string {
	snap := m.snapshot
	switch {
	case snap.Syncing:
		return statusSyncing
	case snap.IsOffline():
		return statusOffline
	case snap.LastError != nil:
		return statusFailed
	case snap.HasOutcome:
		return statusSynced
	default:
		return statusIdle
	}
}

// renderSyncBadge renders the sync state with the time of the last success.
func (m Model) renderSyncBadge(styles Styles, bg BgStyle) string {
	status := m.syncStatus()
	label := status
	if status == statusSyncing {
		label = m.spinner.View() + " " + status
	}
	badge := styles.StatusStyle(status).Render(label)

	var detail string
	switch {
	case status == statusOffline:
		detail = fmt.Sprintf("%d failed attempts", m.snapshot.ConsecutiveFailures)
	case !m.snapshot.LastSuccess.IsZero():
		detail = "last sync " + m.snapshot.LastSuccess.Format("15:04:05")
	}
	if m.snapshot.HasOutcome && status == statusSynced {
		out := m.snapshot.Last
		detail += fmt.Sprintf(" · +%d remote, %d kept, %d replaced", out.Remote, out.Kept, out.Replaced)
	}
	if detail == "" {
		return badge
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, badge, bg.Space(), bg.Render(detail, styles.MutedText))
}

// noticeLevel selects the color of a notification.
type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeDanger
)

// notice is a transient message shown under the quote card.
type notice struct {
	text  string
	level noticeLevel
	at    time.Time
}

func (n notice) expire(now time.Time) notice {
	if n.text != "" && now.Sub(n.at) >= noticeLifetime {
		return notice{}
	}
	return n
}

func (m *Model) setNotice(text string, level noticeLevel) {
	m.notice = notice{text: text, level: level, at: time.Now()}
}

func (m Model) renderNotice(styles Styles) string {
	if m.notice.text == "" {
		return ""
	}
	var style lipgloss.Style
	var border string
	switch m.notice.level {
	case noticeSuccess:
		style, border = styles.SuccessText, m.theme.Success
	case noticeWarning:
		style, border = styles.WarningText, m.theme.Warning
	case noticeDanger:
		style, border = styles.DangerText, m.theme.Danger
	default:
		style, border = styles.InfoText, m.theme.Info
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Render(style.Render(m.notice.text))
}

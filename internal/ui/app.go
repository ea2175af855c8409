package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/prefs"
	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/state"
	"github.com/five82/quotebook/internal/syncer"
)

// View represents the current active view.
type View int

const (
	ViewQuote View = iota
	ViewLogs
)

// overlay is a modal drawn over the current view.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayAdd
	overlayImport
	overlayExport
)

const (
	defaultRefreshTick = time.Second
	noticeLifetime     = 4 * time.Second
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Repo        *quotes.Repository
	Selector    *quotes.Selector
	Engine      *syncer.Engine // nil disables sync
	Logger      *zap.Logger
	LogPath     string
	PrefsPath   string
	Prefs       prefs.Prefs
	Publish     bool // publish added quotes through Engine
	RefreshTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	repo        *quotes.Repository
	selector    *quotes.Selector
	engine      *syncer.Engine
	logger      *zap.Logger
	logPath     string
	prefsPath   string
	prefs       prefs.Prefs
	publish     bool
	refreshTick time.Duration
	keys        keyMap

	// UI state
	theme       Theme
	currentView View
	overlay     overlay
	width       int
	height      int
	ready       bool

	// Quote state
	category string
	current  quotes.Quote
	hasQuote bool

	// Sync state
	snapshot state.Snapshot
	spinner  spinner.Model
	spinning bool

	notice notice

	// Add form
	addInputs   [2]textinput.Model // text, category
	addFocusIdx int
	formErr     string

	// Import/export path
	fileInput textinput.Model

	// Log view
	logViewport viewport.Model
	logLines    []string
	follow      bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	refresh := opts.RefreshTick
	if refresh <= 0 {
		refresh = defaultRefreshTick
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:         ctx,
		repo:        opts.Repo,
		selector:    opts.Selector,
		engine:      opts.Engine,
		logger:      logger,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		prefs:       opts.Prefs,
		publish:     opts.Publish,
		refreshTick: refresh,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewQuote,
		category:    quotes.AllCategories,
		spinner:     sp,
		follow:      true,
	}
	m.initAddInputs()
	m.initFileInput()

	if m.selector != nil {
		m.category = m.selector.SelectedCategory()
		if q, ok := m.selector.LastShown(); ok && m.matchesCategory(q) {
			m.current, m.hasQuote = q, true
		} else {
			m.pickQuote()
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.refreshTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case syncDoneMsg:
		return m.handleSyncDone(msg)

	case fileDoneMsg:
		m.setNotice(msg.text, msg.level)
		if msg.refresh {
			m.refreshAfterChange()
		}
		return m, nil

	case logLinesMsg:
		m.logLines = msg.lines
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayAdd:
		return m.renderAddForm()
	case overlayImport, overlayExport:
		return m.renderFileForm()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHelp:
		// Any key closes help
		m.overlay = overlayNone
		return m, nil
	case overlayAdd:
		return m.handleAddKey(msg)
	case overlayImport, overlayExport:
		return m.handleFileKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewQuote
			return m, nil
		}
		m.currentView = ViewLogs
		m.follow = true
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewQuote
		return m, nil

	case key.Matches(msg, m.keys.AddQuote):
		m.openAddForm()
		return m, nil

	case key.Matches(msg, m.keys.Import):
		m.openFileForm(overlayImport)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		m.openFileForm(overlayExport)
		return m, nil

	case key.Matches(msg, m.keys.SyncNow):
		return m.startSync()
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleQuoteKey(msg)
	}
}

// handleTick refreshes the sync snapshot and, when following, the log view.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.refreshTick)}

	if m.engine != nil {
		prev := m.snapshot
		m.snapshot = m.engine.Status().Snapshot()
		if m.snapshot.LastSuccess.After(prev.LastSuccess) {
			m.setNotice(syncNotice, noticeSuccess)
			m.refreshAfterChange()
		}
		if m.snapshot.Syncing && !m.spinning {
			m.spinning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		if !m.snapshot.Syncing {
			m.spinning = false
		}
	}

	m.notice = m.notice.expire(now)

	if m.currentView == ViewLogs && m.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// savePrefs persists theme and last file choices. Failures are logged only.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderQuoteView())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

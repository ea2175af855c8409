package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/kv"
	"github.com/five82/quotebook/internal/prefs"
	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/remote"
	"github.com/five82/quotebook/internal/syncer"
)

type stubFetcher struct {
	items []remote.Item
	err   error
}

func (f stubFetcher) FetchItems(context.Context) ([]remote.Item, error) {
	return f.items, f.err
}

type fixture struct {
	repo     *quotes.Repository
	selector *quotes.Selector
	durable  *kv.Memory
	dir      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	durable := kv.NewMemory()
	repo := quotes.Load(durable, zap.NewNop())
	sel := quotes.NewSelector(repo, durable, kv.NewMemory(), zap.NewNop()).
		WithRandom(func() float64 { return 0 })
	return fixture{repo: repo, selector: sel, durable: durable, dir: t.TempDir()}
}

func (f fixture) model(engine *syncer.Engine) Model {
	m := New(Options{
		Repo:      f.repo,
		Selector:  f.selector,
		Engine:    engine,
		PrefsPath: filepath.Join(f.dir, "prefs.toml"),
		Prefs:     prefs.Prefs{Theme: "Dracula"},
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press feeds keys to the model and returns the last command.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func feed(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNew_ShowsQuoteFromRememberedCategory(t *testing.T) {
	f := newFixture(t)
	_, ok := f.selector.PickRandom("Life")
	require.True(t, ok)

	m := f.model(nil)
	assert.Equal(t, "Life", m.category)
	assert.True(t, m.hasQuote)
	assert.Equal(t, "Life", m.current.Category)
}

func TestQuoteKeys_NewQuoteAndCategoryCycle(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)
	require.Equal(t, quotes.AllCategories, m.category)

	m, _ = press(m, "n")
	assert.Equal(t, quotes.Default[0], m.current)

	m, _ = press(m, "f")
	assert.Equal(t, "Motivation", m.category)
	assert.Equal(t, "Motivation", f.selector.SelectedCategory())

	m, _ = press(m, "f", "f")
	assert.Equal(t, "Persistence", m.category)
	assert.Equal(t, quotes.Default[2], m.current)

	m, _ = press(m, "f")
	assert.Equal(t, quotes.AllCategories, m.category, "cycle wraps to All")

	m, _ = press(m, "F")
	assert.Equal(t, "Persistence", m.category)
}

func TestAddForm(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, _ = press(m, "a")
	require.Equal(t, overlayAdd, m.overlay)

	m = typeText(m, "  Stay curious.  ")
	m, _ = press(m, "tab")
	m = typeText(m, "Learning")
	m, _ = press(m, "enter")

	assert.Equal(t, overlayNone, m.overlay)
	require.Equal(t, 4, f.repo.Len())
	assert.Equal(t, quotes.Quote{Text: "Stay curious.", Category: "Learning"}, f.repo.Quotes()[3])
	assert.Contains(t, m.notice.text, "Learning")
	assert.True(t, f.repo.HasCategory("Learning"))
}

func TestAddForm_MissingFieldKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, _ = press(m, "a")
	m = typeText(m, "Text without category")
	m, _ = press(m, "enter")

	assert.Equal(t, overlayAdd, m.overlay)
	assert.Equal(t, missingFieldsText, m.formErr)
	assert.Equal(t, 3, f.repo.Len())
	assert.Contains(t, m.View(), missingFieldsText)

	m, _ = press(m, "esc")
	assert.Equal(t, overlayNone, m.overlay)
}

func TestAddForm_PrefillsSelectedCategory(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, _ = press(m, "f", "a")
	assert.Equal(t, "Motivation", m.addInputs[1].Value())
}

func TestImportAndExport(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	src := filepath.Join(f.dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"text":"A","category":"X"},{"text":""}]`), 0o644))

	m, _ = press(m, "i")
	require.Equal(t, overlayImport, m.overlay)
	m.fileInput.SetValue(src)
	m, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	m = feed(m, cmd())

	assert.Equal(t, 4, f.repo.Len())
	assert.Equal(t, "Imported 1 quotes, 1 invalid records skipped.", m.notice.text)
	assert.Equal(t, src, prefs.Load(m.prefsPath).LastFile)

	out := filepath.Join(f.dir, "out", "quotes.yaml")
	m, _ = press(m, "x")
	require.Equal(t, overlayExport, m.overlay)
	m.fileInput.SetValue(out)
	m, cmd = press(m, "enter")
	require.NotNil(t, cmd)
	m = feed(m, cmd())
	assert.Equal(t, noticeSuccess, m.notice.level)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	got, dropped, err := quotes.Decode(data, quotes.FormatYAML)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, f.repo.Quotes(), got)
}

func TestImport_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", `{not json`, "could not be parsed"},
		{"not a list", `{"text":"A","category":"B"}`, "expected a list"},
		{"no valid records", `[{"text":"A"}]`, "No valid quotes found (1 dropped)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			path := filepath.Join(f.dir, "in.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			msg := importCmd(f.repo, zap.NewNop(), path)().(fileDoneMsg)
			assert.Contains(t, msg.text, tt.want)
			assert.False(t, msg.refresh)
			assert.Equal(t, 3, f.repo.Len())
		})
	}
}

func TestSync_NotifiesAndShowsServerQuotes(t *testing.T) {
	f := newFixture(t)
	engine := syncer.New(f.repo, stubFetcher{items: []remote.Item{{Title: "sunt aut facere"}}}, syncer.Options{})
	m := f.model(engine)

	m = feed(m, syncCmd(context.Background(), engine)())

	assert.Equal(t, syncNotice, m.notice.text)
	assert.Equal(t, statusSynced, m.syncStatus())
	assert.Equal(t, quotes.Quote{Text: "sunt aut facere", Category: "Server"}, m.current)
	assert.Contains(t, m.View(), "Server")
}

func TestSync_Failure(t *testing.T) {
	f := newFixture(t)
	engine := syncer.New(f.repo, stubFetcher{err: errors.New("connection refused")}, syncer.Options{})
	m := f.model(engine)

	m = feed(m, syncCmd(context.Background(), engine)())
	assert.Equal(t, noticeDanger, m.notice.level)
	assert.Contains(t, m.notice.text, "connection refused")
	assert.Equal(t, statusFailed, m.syncStatus())
	assert.Equal(t, 3, f.repo.Len())

	m = feed(m, syncCmd(context.Background(), engine)())
	assert.Equal(t, statusOffline, m.syncStatus())
}

func TestSync_InProgressAndUnconfigured(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, cmd := press(m, "s")
	assert.Nil(t, cmd)
	assert.Equal(t, "Sync is not configured.", m.notice.text)

	m = feed(m, syncDoneMsg{err: syncer.ErrSyncInProgress})
	assert.Equal(t, noticeInfo, m.notice.level)
}

func TestTick_DetectsBackgroundSync(t *testing.T) {
	f := newFixture(t)
	engine := syncer.New(f.repo, stubFetcher{items: []remote.Item{{Title: "qui est esse"}}}, syncer.Options{})
	m := f.model(engine)

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	m = feed(m, tickMsg(time.Now()))
	assert.Equal(t, syncNotice, m.notice.text)

	// A second tick without a new sync does not repeat the notice.
	m.notice = notice{}
	m = feed(m, tickMsg(time.Now()))
	assert.Empty(t, m.notice.text)
}

func TestNoticeExpires(t *testing.T) {
	n := notice{text: "hi", at: time.Now()}
	assert.Equal(t, "hi", n.expire(n.at.Add(time.Second)).text)
	assert.Empty(t, n.expire(n.at.Add(noticeLifetime)).text)
}

func TestView_EmptyCategory(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)
	m.category = "Nowhere"
	m.pickQuote()

	assert.False(t, m.hasQuote)
	assert.Contains(t, m.View(), emptyCategoryText)
}

func TestHelpOverlay(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, _ = press(m, "?")
	assert.Equal(t, overlayHelp, m.overlay)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	// any key closes help without acting
	m, cmd := press(m, "e")
	assert.Nil(t, cmd)
	assert.Equal(t, overlayNone, m.overlay)
}

func TestGlobalKeysFollowKeyMap(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)
	m.keys.AddQuote = key.NewBinding(key.WithKeys("+"))
	m.keys.SyncNow = key.NewBinding(key.WithKeys("S"))

	m, _ = press(m, "a")
	assert.Equal(t, overlayNone, m.overlay, "old binding no longer opens the form")
	m, _ = press(m, "+")
	assert.Equal(t, overlayAdd, m.overlay)

	m, _ = press(m, "esc")
	m, _ = press(m, "s")
	assert.Empty(t, m.notice.text)
	m, _ = press(m, "S")
	assert.Equal(t, "Sync is not configured.", m.notice.text)
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	f := newFixture(t)
	m := f.model(nil)

	m, _ = press(m, "T")
	assert.Equal(t, "Slate", m.theme.Name)
	assert.Equal(t, "Slate", prefs.Load(m.prefsPath).Theme)
}

func TestLogView(t *testing.T) {
	f := newFixture(t)
	logPath := filepath.Join(f.dir, "quotebook.log")
	require.NoError(t, os.WriteFile(logPath, []byte(`{"level":"warn","msg":"sync failed","error":"boom"}`+"\n"), 0o644))

	m := New(Options{Repo: f.repo, Selector: f.selector, LogPath: logPath, PrefsPath: filepath.Join(f.dir, "prefs.toml")})
	m = feed(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, cmd := press(m, "l")
	require.Equal(t, ViewLogs, m.currentView)
	require.NotNil(t, cmd)
	m = feed(m, cmd())

	require.Len(t, m.logLines, 1)
	assert.True(t, strings.HasPrefix(m.logLines[0], "WARN – sync failed"))
	assert.Contains(t, m.View(), "sync failed")

	m, _ = press(m, "k")
	assert.False(t, m.follow)
	m, _ = press(m, "G")
	assert.True(t, m.follow)

	m, _ = press(m, "l")
	assert.Equal(t, ViewQuote, m.currentView)
}

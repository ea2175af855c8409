package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/quotebook/internal/quotes"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestOpen_PersistsAcrossRuns(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	cfgPath := writeConfig(t, `data_dir = "`+dataDir+`"`+"\n"+`endpoint = "http://127.0.0.1:1/posts"`+"\n")

	svc, err := Open(Options{ConfigPath: cfgPath, SyncEvery: time.Minute})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := svc.Repo.Len(); got != len(quotes.Default) {
		t.Fatalf("fresh repo has %d quotes, want defaults", got)
	}
	if got := svc.Engine.Interval(); got != time.Minute {
		t.Fatalf("Interval = %v, want flag override 1m", got)
	}
	if _, err := svc.Repo.Add("Small steps.", "Habits"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, ok := svc.Selector.PickRandom("Habits"); !ok {
		t.Fatal("PickRandom(Habits) found nothing")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	svc, err = Open(Options{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer svc.Close()

	if got := svc.Repo.Len(); got != len(quotes.Default)+1 {
		t.Fatalf("reopened repo has %d quotes, want %d", got, len(quotes.Default)+1)
	}
	if got := svc.Selector.SelectedCategory(); got != "Habits" {
		t.Fatalf("SelectedCategory = %q, want Habits", got)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "quotebook.log")); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, `sync_interval = "soon"`)

	_, err := Open(Options{ConfigPath: cfgPath})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Open error = %v, want load config failure", err)
	}
}

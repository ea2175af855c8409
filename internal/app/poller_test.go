package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/kv"
	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/remote"
	"github.com/five82/quotebook/internal/syncer"
)

type countingFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFetcher) FetchItems(context.Context) ([]remote.Item, error) {
	f.calls.Add(1)
	return []remote.Item{{Title: "ea molestias"}}, f.err
}

func TestStartSync_InitialSyncThenStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := quotes.Load(kv.NewMemory(), zap.NewNop())
	fetcher := &countingFetcher{}
	engine := syncer.New(repo, fetcher, syncer.Options{Interval: time.Hour})

	stop := StartSync(context.Background(), engine)

	deadline := time.Now().Add(2 * time.Second)
	for !engine.Status().Snapshot().HasOutcome {
		if time.Now().After(deadline) {
			t.Fatal("initial sync did not complete")
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop() // idempotent

	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
	if got := repo.Quotes()[0]; got != (quotes.Quote{Text: "ea molestias", Category: "Server"}) {
		t.Fatalf("first quote = %+v, want server quote", got)
	}
}

func TestStartSync_FailureIsRecorded(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := quotes.Load(kv.NewMemory(), zap.NewNop())
	engine := syncer.New(repo, &countingFetcher{err: errors.New("offline")}, syncer.Options{Interval: time.Hour})

	stop := StartSync(context.Background(), engine)
	deadline := time.Now().Add(2 * time.Second)
	for engine.Status().Snapshot().LastError == nil {
		if time.Now().After(deadline) {
			t.Fatal("initial sync failure not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()

	if repo.Len() != len(quotes.Default) {
		t.Fatalf("repo changed on failed sync: %d quotes", repo.Len())
	}
}

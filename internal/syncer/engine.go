package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/remote"
	"github.com/five82/quotebook/internal/state"
)

var (
	// ErrSyncFailed wraps any fetch, decode or persist failure during a sync.
	// The repository is left untouched when it is returned.
	ErrSyncFailed = errors.New("sync failed")
	// ErrSyncInProgress is returned when Sync is called while another sync
	// is outstanding. Nothing is done.
	ErrSyncInProgress = errors.New("sync already in progress")
)

const (
	defaultInterval = 20 * time.Second
	publishTimeout  = 10 * time.Second
)

// Result describes a completed merge.
type Result struct {
	Remote   int // remote quotes written, in fetch order, ahead of local ones
	Kept     int // local quotes kept
	Replaced int // local quotes dropped because a remote quote had the same text
}

// Options configure an Engine.
type Options struct {
	Publisher      remote.Publisher // nil disables publishing
	Status         *state.Store     // nil allocates a private store
	Logger         *zap.Logger
	Interval       time.Duration // zero uses 20s
	RemoteCategory string        // empty uses DefaultRemoteCategory
}

// Engine reconciles the repository against the remote source. At most one
// sync runs at a time.
type Engine struct {
	repo      *quotes.Repository
	fetcher   remote.Fetcher
	publisher remote.Publisher
	status    *state.Store
	logger    *zap.Logger
	interval  time.Duration
	category  string

	guard *semaphore.Weighted

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// New returns an idle engine.
func New(repo *quotes.Repository, fetcher remote.Fetcher, opts Options) *Engine {
	e := &Engine{
		repo:      repo,
		fetcher:   fetcher,
		publisher: opts.Publisher,
		status:    opts.Status,
		logger:    opts.Logger,
		interval:  opts.Interval,
		category:  strings.TrimSpace(opts.RemoteCategory),
		guard:     semaphore.NewWeighted(1),
	}
	if e.status == nil {
		e.status = &state.Store{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.interval <= 0 {
		e.interval = defaultInterval
	}
	if e.category == "" {
		e.category = DefaultRemoteCategory
	}
	return e
}

// Status returns the store the engine reports to.
func (e *Engine) Status() *state.Store {
	return e.status
}

// Interval returns the period used by Start.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Sync fetches the remote list and merges it into the repository, remote
// first. Local state is read when the merge is applied, not when the fetch
// starts, so quotes added during the fetch survive unless a remote quote
// has the same text.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	if !e.guard.TryAcquire(1) {
		return Result{}, ErrSyncInProgress
	}
	defer e.guard.Release(1)

	e.status.Begin()
	start := time.Now()

	items, err := e.fetcher.FetchItems(ctx)
	if err != nil {
		return Result{}, e.fail(fmt.Errorf("%w: fetch: %w", ErrSyncFailed, err))
	}
	incoming := FromItems(items, e.category)

	var res Result
	err = e.repo.Merge(func(current []quotes.Quote) []quotes.Quote {
		merged, replaced := Merge(incoming, current)
		res = Result{
			Remote:   len(incoming),
			Kept:     len(current) - replaced,
			Replaced: replaced,
		}
		return merged
	})
	if err != nil {
		return Result{}, e.fail(fmt.Errorf("%w: apply: %w", ErrSyncFailed, err))
	}

	e.status.Succeed(state.Outcome{Remote: res.Remote, Kept: res.Kept, Replaced: res.Replaced})
	e.logger.Info("sync complete",
		zap.Int("remote", res.Remote),
		zap.Int("kept", res.Kept),
		zap.Int("replaced", res.Replaced),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (e *Engine) fail(err error) error {
	e.status.Fail(err)
	e.logger.Warn("sync failed", zap.Error(err))
	return err
}

// Start launches the periodic sync. Each tick runs independently; a tick
// that fires while a sync is outstanding is skipped. Calling Start on a
// running or stopped engine does nothing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil || e.stopped {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.wg.Add(1)
				go func() {
					defer e.wg.Done()
					e.tick(ctx)
				}()
			}
		}
	}()
	e.logger.Debug("periodic sync started", zap.Duration("interval", e.interval))
}

func (e *Engine) tick(ctx context.Context) {
	if _, err := e.Sync(ctx); errors.Is(err, ErrSyncInProgress) {
		e.logger.Debug("skipping sync tick, previous sync outstanding")
	}
}

// Stop cancels the periodic sync and waits for in-flight work, including
// pending publishes, to finish. The engine accepts no background work
// afterwards; Sync and Publish still run on demand.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// Publish sends q to the remote publish endpoint. It never touches local
// state; the error is returned for the caller to report.
func (e *Engine) Publish(ctx context.Context, q quotes.Quote) error {
	if e.publisher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, remote.Record{Text: q.Text, Category: q.Category}); err != nil {
		return fmt.Errorf("publish quote: %w", err)
	}
	return nil
}

// PublishAsync publishes q in the background. Failures are logged only.
// After Stop the publish is dropped.
func (e *Engine) PublishAsync(q quotes.Quote) {
	if e.publisher == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		e.logger.Debug("engine stopped, dropping publish", zap.String("category", q.Category))
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.Publish(context.Background(), q); err != nil {
			e.logger.Warn("best-effort publish failed", zap.Error(err))
			return
		}
		e.logger.Debug("quote published", zap.String("category", q.Category))
	}()
}

package app

import (
	"context"
	"sync"

	"github.com/five82/quotebook/internal/syncer"
)

// StartSync runs one sync right away and launches the engine's periodic
// sync. It returns immediately; the returned stop cancels both and waits for
// them to finish. Failures are recorded in the engine's status store.
func StartSync(ctx context.Context, engine *syncer.Engine) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = engine.Sync(ctx)
	}()

	engine.Start(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
			engine.Stop()
		})
	}
}

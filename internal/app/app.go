package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/config"
	"github.com/five82/quotebook/internal/kv"
	"github.com/five82/quotebook/internal/logging"
	"github.com/five82/quotebook/internal/prefs"
	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/remote"
	"github.com/five82/quotebook/internal/state"
	"github.com/five82/quotebook/internal/syncer"
	"github.com/five82/quotebook/internal/ui"
)

// Options configure the quotebook application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/quotebook/prefs.toml
	Verbose    bool          // debug logging
	SyncEvery  time.Duration // zero uses the configured sync_interval
}

// Services holds the wired components shared by the TUI and the CLI
// subcommands.
type Services struct {
	Config   config.Config
	Logger   *zap.Logger
	Repo     *quotes.Repository
	Selector *quotes.Selector
	Engine   *syncer.Engine

	store *kv.SQLite
}

// Open loads configuration and wires storage, the repository and the sync
// engine. Callers must Close the result.
func Open(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.SyncEvery > 0 {
		cfg.SyncInterval = opts.SyncEvery
	}

	logger, err := logging.New(cfg.LogPath(), opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store, err := kv.OpenSQLite(cfg.DBPath())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open quote store: %w", err)
	}

	client, err := remote.NewClient(remote.Options{
		Endpoint:   cfg.Endpoint,
		PublishURL: cfg.PublishURL,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		_ = store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("init remote client: %w", err)
	}

	repo := quotes.Load(store, logger.Named("quotes"))
	session := kv.NewSession(kv.NewMemory(), logger.Named("session"))

	var publisher remote.Publisher
	if cfg.Publish {
		publisher = client
	}
	engine := syncer.New(repo, client, syncer.Options{
		Publisher:      publisher,
		Status:         &state.Store{},
		Logger:         logger.Named("sync"),
		Interval:       cfg.SyncInterval,
		RemoteCategory: cfg.RemoteCategory,
	})

	logger.Debug("services ready",
		zap.String("db", cfg.DBPath()),
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("publish", cfg.Publish),
		zap.Duration("sync_interval", cfg.SyncInterval))

	return &Services{
		Config:   cfg,
		Logger:   logger,
		Repo:     repo,
		Selector: quotes.NewSelector(repo, store, session, logger.Named("selector")),
		Engine:   engine,
		store:    store,
	}, nil
}

// Close stops background sync and releases the store.
func (s *Services) Close() error {
	s.Engine.Stop()
	err := s.store.Close()
	_ = s.Logger.Sync()
	if err != nil {
		return fmt.Errorf("close quote store: %w", err)
	}
	return nil
}

// Run boots the quotebook TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := Open(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	userPrefs := prefs.Load(opts.PrefsPath)

	stop := StartSync(ctx, svc.Engine)
	defer stop()

	svc.Logger.Info("quotebook started", zap.Int("quotes", svc.Repo.Len()))

	err = ui.Run(ui.Options{
		Context:   ctx,
		Repo:      svc.Repo,
		Selector:  svc.Selector,
		Engine:    svc.Engine,
		Logger:    svc.Logger.Named("ui"),
		LogPath:   svc.Config.LogPath(),
		PrefsPath: opts.PrefsPath,
		Prefs:     userPrefs,
		Publish:   svc.Config.Publish,
	})
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return nil
	}
	return err
}

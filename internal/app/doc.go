// Package app is the composition root for quotebook.
//
// Open loads the TOML config, builds the zap logger that writes to the data
// directory, opens the SQLite quote store and wires the repository, selector,
// remote client and sync engine into a Services value. The CLI subcommands
// use Services directly; Run adds the background sync and the TUI:
//
//	Run()
//	  ├─> Open()          config, logging, kv.OpenSQLite, quotes.Load, syncer.New
//	  ├─> StartSync()     one sync now, then engine.Start (every sync_interval)
//	  └─> ui.Run()        blocks until quit or context cancellation
//
// Sync failures never stop the application. They are logged and recorded in
// the engine's state.Store, where the UI picks them up.
package app

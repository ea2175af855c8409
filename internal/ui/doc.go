// Package ui provides the terminal user interface for quotebook.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model styled after k9s. It shows one quote
// at a time from the selected category and drives the repository, selector
// and sync engine directly; all persistent state lives in those packages, so
// the model only holds presentation state.
//
// # Package Structure
//
//   - app.go: Model, Options, Update loop and Run
//   - quote_view.go: Quote card, category bar, header and command bar
//   - forms.go: Add quote form and the import/export path prompt
//   - sync.go: Manual sync, the header sync badge and notifications
//   - logs.go: Log file view backed by logtail
//   - help.go, keys.go, theme.go: Help overlay, bindings and palettes
//
// # Event Flow
//
//  1. Run() builds the model and starts the Bubble Tea program
//  2. A refresh tick reads the engine's state.Store snapshot; a new
//     successful sync shows a notification and a fresh quote
//  3. File IO and manual syncs run as tea.Cmds and report back as messages
//  4. Context cancellation shuts the program down
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context:  ctx,
//		Repo:     repo,
//		Selector: selector,
//		Engine:   engine,
//		LogPath:  cfg.LogPath(),
//		Prefs:    prefs.Load(prefsPath),
//	})
//
// # Key Bindings
//
//   - n or Space: Show another quote from the category
//   - f/F: Next/previous category (remembered across runs)
//   - a: Add a quote
//   - i/x: Import/export JSON or YAML
//   - s: Sync from the server now
//   - l: Toggle the log view
//   - T: Cycle theme
//   - e or Ctrl+C: Exit
package ui

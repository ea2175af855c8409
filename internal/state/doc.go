// Package state holds the thread-safe sync status shared between the sync
// engine and its callers.
//
// # Overview
//
// The sync engine runs on its own goroutine and reports each attempt here.
// The TUI and CLI read snapshots on their own schedule to render a status
// line ("synced 14:32:15", "sync failed: …", "offline").
//
//	Producer (sync engine):        Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ store.Begin()  │            │                 │
//	│ FetchItems()   │            │                 │
//	│ repo.Merge()   │            │                 │
//	│ store.Succeed()│───────────→│ store.Snapshot()│
//	│  or Fail(err)  │  (mutex)   │      ↓          │
//	└────────────────┘            │  render status  │
//	                              └─────────────────┘
//
// # Update Semantics
//
// Fail keeps the previous Outcome and records the error, so the UI can keep
// showing what the last good merge did while reporting the failure. Succeed
// clears the error and resets ConsecutiveFailures. Two or more consecutive
// failures mark the snapshot offline.
//
// # Copying
//
// Snapshot returns a value copy. The error is re-wrapped so callers never
// hold the engine's error instance; errors.Is still matches the original.
//
// The zero Store is ready to use.
package state

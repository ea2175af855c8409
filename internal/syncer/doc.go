// Package syncer reconciles the local quote repository with the remote
// source of truth.
//
// # Conflict Rule
//
// Remote quotes take unconditional precedence. A merge produces every remote
// quote in fetch order, followed by the local quotes whose trimmed text does
// not match any remote quote. Local-only content is preserved; a local quote
// sharing its text with a remote one is replaced by the remote version.
//
// # States
//
// An Engine is either idle or syncing. The syncing state is a weighted
// semaphore of size one taken with TryAcquire, so a Sync issued while another
// is outstanding returns ErrSyncInProgress immediately instead of queueing.
//
// # Failure
//
// Fetch, decode and persist failures return an error wrapping ErrSyncFailed
// and leave the repository exactly as it was. Failures are recorded in the
// state.Store and logged; they never stop the periodic task.
//
// # Scheduling
//
// Start runs a ticker goroutine at the configured interval (default 20s).
// Each tick syncs on its own goroutine so a slow fetch never delays the
// ticker; overlapping ticks are dropped by the semaphore. Stop cancels the
// ticker and waits for outstanding syncs and publishes. Tests call Sync
// directly instead of relying on wall-clock ticks.
//
// # Publishing
//
// Publish and PublishAsync push a newly added quote to the remote publish
// endpoint. This is a one-way, best-effort side call: it never changes local
// state, and PublishAsync only logs failures.
package syncer

// Package quotes holds the quote repository and the operations callers run
// against it.
//
// # Components
//
//   - Repository: ordered collection written through to a durable kv.Store
//   - Categories: derived index, "All" followed by categories in first-seen order
//   - Selector: uniform random pick from a category filtered view
//   - Encode/Decode: JSON (and YAML) documents for export and import
//
// # Validation
//
// A record is valid when both text and category are non-empty after trimming.
// Invalid records found while loading, replacing or importing are dropped,
// never repaired.
//
// # Persistence
//
// Every mutation persists the whole collection under the "quotes" key before
// the in-memory state changes, so a rejected write leaves the repository as
// it was and surfaces ErrPersistenceWrite. The selector's writes
// ("selectedCategory", "lastQuote") are best effort.
package quotes

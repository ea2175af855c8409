// Package logtail reads the tail of quotebook's log file for display.
//
// Read keeps a ring buffer of the last N lines so large logs are scanned once
// without holding the whole file in memory. Format turns zap's JSON lines
// into a single human readable line with the fields sorted by key; anything
// that is not a JSON object (a panic trace, for instance) is shown verbatim.
package logtail

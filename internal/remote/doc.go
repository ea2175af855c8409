// Package remote is the HTTP transport to the remote quote source.
//
// The list endpoint answers GET with a JSON array of objects exposing a
// "title" string; any other fields are ignored. The optional publish endpoint
// accepts a POST of {"text", "category"} for a newly added quote.
//
// Requests carry a per-client timeout (default 5s) in addition to the
// caller's context. Non-2xx/3xx statuses and undecodable bodies are returned
// as errors; the caller decides whether they are fatal.
package remote

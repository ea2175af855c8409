// Package config loads quotebook's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/quotebook/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	data_dir        = "~/.local/share/quotebook"
//	endpoint        = "https://jsonplaceholder.typicode.com/posts?_limit=5"
//	publish_url     = "https://jsonplaceholder.typicode.com/posts"
//	publish         = false
//	sync_interval   = "20s"
//	request_timeout = "5s"
//	remote_category = "Server"
//
// All fields are optional. Tilde expansion is performed on data_dir.
// Durations use Go syntax and must be positive.
//
// # Derived Paths
//
//   - DBPath: <data_dir>/quotes.db (durable key/value store)
//   - LogPath: <data_dir>/quotebook.log (zap JSON log)
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and invalid durations. A missing file is
// not an error.
package config

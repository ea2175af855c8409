package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is one decoded zap JSON log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  map[string]any
}

// reserved keys written by the production encoder.
var reserved = map[string]bool{
	"ts": true, "level": true, "msg": true, "caller": true, "stacktrace": true, "logger": true,
}

// Parse decodes a zap JSON line. ok is false for lines that are not JSON
// objects, which callers should display verbatim.
func Parse(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{Fields: map[string]any{}}
	if ts, ok := raw["ts"].(string); ok {
		if parsed, err := time.Parse("2006-01-02T15:04:05.000Z0700", ts); err == nil {
			e.Time = parsed
		}
	}
	e.Level, _ = raw["level"].(string)
	e.Message, _ = raw["msg"].(string)
	for k, v := range raw {
		if reserved[k] {
			continue
		}
		e.Fields[k] = v
	}
	return e, true
}

// Format renders a log line for display:
//
//	2025-10-08 21:01:05 WARN – sync failed · error=connection refused
//
// Non-JSON lines are returned unchanged.
func Format(line string) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}
	level := strings.ToUpper(strings.TrimSpace(e.Level))
	if level == "" {
		level = "INFO"
	}
	parts := make([]string, 0, 2)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.In(time.Local).Format("2006-01-02 15:04:05"))
	}
	parts = append(parts, level)
	header := strings.Join(parts, " ")
	if msg := strings.TrimSpace(e.Message); msg != "" {
		header += " – " + msg
	}
	if len(e.Fields) == 0 {
		return header
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]string, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, fmt.Sprintf("%s=%v", k, e.Fields[k]))
	}
	return header + " · " + strings.Join(kvs, " ")
}

// FormatLines applies Format to every line.
func FormatLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Format(line)
	}
	return out
}

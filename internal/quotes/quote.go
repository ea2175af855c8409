package quotes

import (
	"strings"
	"unicode/utf8"
)

// Quote is a single text record tagged with a category.
type Quote struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

// Default is the seed set used when durable storage is empty or unreadable.
var Default = []Quote{
	{Text: "The best way to predict the future is to create it.", Category: "Motivation"},
	{Text: "Life is what happens when you're busy making other plans.", Category: "Life"},
	{Text: "Do not watch the clock. Do what it does. Keep going.", Category: "Persistence"},
}

// Normalize trims both fields and reports whether the result is a valid
// quote: both fields non-empty and valid UTF-8, so the record survives a
// JSON round trip unchanged.
func Normalize(text, category string) (Quote, bool) {
	q := Quote{Text: strings.TrimSpace(text), Category: strings.TrimSpace(category)}
	if q.Text == "" || q.Category == "" {
		return Quote{}, false
	}
	if !utf8.ValidString(q.Text) || !utf8.ValidString(q.Category) {
		return Quote{}, false
	}
	return q, true
}

// fromValue validates a loosely decoded document element. Anything other than
// an object with string text and category fields is rejected.
func fromValue(v any) (Quote, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Quote{}, false
	}
	text, ok := obj["text"].(string)
	if !ok {
		return Quote{}, false
	}
	category, ok := obj["category"].(string)
	if !ok {
		return Quote{}, false
	}
	return Normalize(text, category)
}

// validateAll keeps the elements that pass validation, in order, and counts
// the rest.
func validateAll(items []any) (valid []Quote, dropped int) {
	valid = make([]Quote, 0, len(items))
	for _, item := range items {
		q, ok := fromValue(item)
		if !ok {
			dropped++
			continue
		}
		valid = append(valid, q)
	}
	return valid, dropped
}

// normalizeAll applies Normalize to typed quotes, dropping invalid ones.
func normalizeAll(in []Quote) (valid []Quote, dropped int) {
	valid = make([]Quote, 0, len(in))
	for _, q := range in {
		n, ok := Normalize(q.Text, q.Category)
		if !ok {
			dropped++
			continue
		}
		valid = append(valid, n)
	}
	return valid, dropped
}

func cloneQuotes(in []Quote) []Quote {
	if len(in) == 0 {
		return nil
	}
	dup := make([]Quote, len(in))
	copy(dup, in)
	return dup
}

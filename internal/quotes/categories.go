package quotes

import "strings"

// AllCategories is the synthetic filter value meaning "no filter".
const AllCategories = "All"

// Categories returns AllCategories followed by every distinct trimmed
// category in first-seen order. Comparison is case-sensitive.
func Categories(quotes []Quote) []string {
	out := make([]string, 0, len(quotes)+1)
	out = append(out, AllCategories)
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		c := strings.TrimSpace(q.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// filterByCategory returns the quotes matching category, or all of them for
// AllCategories.
func filterByCategory(quotes []Quote, category string) []Quote {
	if category == AllCategories {
		return cloneQuotes(quotes)
	}
	var pool []Quote
	for _, q := range quotes {
		if q.Category == category {
			pool = append(pool, q)
		}
	}
	return pool
}

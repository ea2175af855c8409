package syncer

import (
	"strings"

	"github.com/five82/quotebook/internal/quotes"
	"github.com/five82/quotebook/internal/remote"
)

// DefaultRemoteCategory labels quotes that came from the remote source.
const DefaultRemoteCategory = "Server"

// FromItems maps remote items to quotes, using the item title as text.
// Items whose title is blank are dropped.
func FromItems(items []remote.Item, category string) []quotes.Quote {
	out := make([]quotes.Quote, 0, len(items))
	for _, item := range items {
		q, ok := quotes.Normalize(item.Title, category)
		if !ok {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Merge applies the remote-wins rule: every remote quote in fetch order,
// followed by the local quotes whose trimmed text matches no remote quote.
// It returns the merged list and how many local quotes were replaced.
func Merge(remoteQuotes, local []quotes.Quote) (merged []quotes.Quote, replaced int) {
	texts := make(map[string]struct{}, len(remoteQuotes))
	merged = make([]quotes.Quote, 0, len(remoteQuotes)+len(local))
	for _, q := range remoteQuotes {
		texts[strings.TrimSpace(q.Text)] = struct{}{}
		merged = append(merged, q)
	}
	for _, q := range local {
		if _, ok := texts[strings.TrimSpace(q.Text)]; ok {
			replaced++
			continue
		}
		merged = append(merged, q)
	}
	return merged, replaced
}

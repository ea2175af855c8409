package quotes

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/kv"
)

// Storage keys.
const (
	KeyQuotes           = "quotes"
	KeySelectedCategory = "selectedCategory"
	KeyLastQuote        = "lastQuote"
)

// Repository is the ordered in-memory quote collection, written through to
// the durable store after every mutation. All methods are safe for
// concurrent use; mutations are serialized.
type Repository struct {
	mu         sync.Mutex
	durable    kv.Store
	logger     *zap.Logger
	quotes     []Quote
	categories []string
}

// Load builds a repository from the durable store. When the stored value is
// absent, unreadable, not an array, or holds no valid records, the Default
// set is substituted and persisted immediately.
func Load(durable kv.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repository{durable: durable, logger: logger}

	loaded, reason := r.readStored()
	if reason == "" {
		r.quotes = loaded
		r.categories = Categories(loaded)
		return r
	}

	logger.Info("using default quotes", zap.String("reason", reason))
	defaults := cloneQuotes(Default)
	if err := r.persist(defaults); err != nil {
		logger.Warn("persist default quotes failed", zap.Error(err))
	}
	r.quotes = defaults
	r.categories = Categories(defaults)
	return r
}

// readStored returns the valid stored quotes, or a non-empty reason why the
// defaults must be used instead.
func (r *Repository) readStored() ([]Quote, string) {
	raw, ok, err := r.durable.Get(KeyQuotes)
	if err != nil {
		r.logger.Warn("read stored quotes failed", zap.Error(err))
		return nil, "unreadable"
	}
	if !ok || raw == "" {
		return nil, "empty"
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, "corrupt"
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, "not a sequence"
	}
	valid, dropped := validateAll(items)
	if dropped > 0 {
		r.logger.Warn("dropped invalid stored quotes", zap.Int("dropped", dropped))
	}
	if len(valid) == 0 {
		return nil, "no valid records"
	}
	return valid, ""
}

// Add validates, appends and persists a new quote.
func (r *Repository) Add(text, category string) (Quote, error) {
	q, ok := Normalize(text, category)
	if !ok {
		return Quote{}, fmt.Errorf("%w: text and category must be non-empty UTF-8", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(cloneQuotes(r.quotes), q)
	if err := r.commitLocked(next); err != nil {
		return Quote{}, err
	}
	r.logger.Debug("quote added", zap.String("category", q.Category))
	return q, nil
}

// ReplaceAll validates quotes exactly like Load and overwrites the collection.
func (r *Repository) ReplaceAll(quotes []Quote) error {
	valid, dropped := normalizeAll(quotes)
	if dropped > 0 {
		r.logger.Warn("dropped invalid quotes on replace", zap.Int("dropped", dropped))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitLocked(valid)
}

// Merge runs fn against the current collection and replaces it with the
// result, as one atomic step. fn receives a copy it may modify.
func (r *Repository) Merge(fn func(current []Quote) []Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged, dropped := normalizeAll(fn(cloneQuotes(r.quotes)))
	if dropped > 0 {
		r.logger.Warn("dropped invalid quotes on merge", zap.Int("dropped", dropped))
	}
	return r.commitLocked(merged)
}

// appendValid appends already validated quotes and persists.
func (r *Repository) appendValid(quotes []Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(cloneQuotes(r.quotes), quotes...)
	return r.commitLocked(next)
}

// commitLocked persists next and only then swaps it in, so a failed write
// leaves the repository unchanged.
func (r *Repository) commitLocked(next []Quote) error {
	if err := r.persist(next); err != nil {
		return err
	}
	r.quotes = next
	r.categories = Categories(next)
	return nil
}

func (r *Repository) persist(quotes []Quote) error {
	if quotes == nil {
		quotes = []Quote{}
	}
	payload, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("encode quotes: %w", err)
	}
	if err := r.durable.Set(KeyQuotes, string(payload)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}
	return nil
}

// Quotes returns a copy of the collection in insertion order.
func (r *Repository) Quotes() []Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneQuotes(r.quotes)
}

// Categories returns a copy of the current category index.
func (r *Repository) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out
}

// HasCategory reports whether category is present in the index.
func (r *Repository) HasCategory(category string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Filter returns the quotes in category, or all quotes for AllCategories.
func (r *Repository) Filter(category string) []Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterByCategory(r.quotes, category)
}

// Len returns the number of quotes.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.quotes)
}

package quotes

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/quotebook/internal/kv"
)

// Selector picks random quotes from a category filtered view of a
// repository and remembers the last filter and the last quote shown.
type Selector struct {
	repo    *Repository
	durable kv.Store
	session kv.Store
	logger  *zap.Logger
	random  func() float64
}

// NewSelector returns a selector over repo. The selected category is kept in
// durable and the last quote in session.
func NewSelector(repo *Repository, durable, session kv.Store, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		repo:    repo,
		durable: durable,
		session: session,
		logger:  logger,
		random:  rand.Float64,
	}
}

// WithRandom replaces the uniform [0,1) source. Intended for tests.
func (s *Selector) WithRandom(fn func() float64) *Selector {
	if fn != nil {
		s.random = fn
	}
	return s
}

// PickRandom returns a quote chosen uniformly from category, or false when
// the category has no quotes. An indexed category is remembered durably and
// the chosen quote for the session; both writes are best effort.
func (s *Selector) PickRandom(category string) (Quote, bool) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategories
	}
	if category == AllCategories || s.repo.HasCategory(category) {
		s.rememberCategory(category)
	}

	pool := s.repo.Filter(category)
	if len(pool) == 0 {
		return Quote{}, false
	}

	idx := int(math.Floor(s.random() * float64(len(pool))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	q := pool[idx]
	s.rememberQuote(q)
	return q, true
}

// SelectedCategory returns the remembered filter, or AllCategories when none
// is stored or the stored one no longer exists.
func (s *Selector) SelectedCategory() string {
	v, ok, err := s.durable.Get(KeySelectedCategory)
	if err != nil {
		s.logger.Warn("read selected category failed", zap.Error(err))
		return AllCategories
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" || !s.repo.HasCategory(v) {
		return AllCategories
	}
	return v
}

// LastShown returns the quote last picked during this session.
func (s *Selector) LastShown() (Quote, bool) {
	raw, ok, err := s.session.Get(KeyLastQuote)
	if err != nil || !ok {
		return Quote{}, false
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return Quote{}, false
	}
	return Normalize(q.Text, q.Category)
}

func (s *Selector) rememberCategory(category string) {
	if err := s.durable.Set(KeySelectedCategory, category); err != nil {
		s.logger.Warn("persist selected category failed", zap.String("category", category), zap.Error(err))
	}
}

func (s *Selector) rememberQuote(q Quote) {
	payload, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := s.session.Set(KeyLastQuote, string(payload)); err != nil {
		s.logger.Warn("persist last quote failed", zap.Error(err))
	}
}

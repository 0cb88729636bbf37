package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search"
)

// Engine is an in-memory search.Engine matching case-insensitive substrings
// of name, description and city. Safe for concurrent use.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]search.Document
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{docs: make(map[string]search.Document)}
}

// Index adds or updates a single document.
func (e *Engine) Index(_ context.Context, doc search.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = doc
	return nil
}

// Delete removes a document by id.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// BulkIndex adds or updates many documents.
func (e *Engine) BulkIndex(_ context.Context, docs []search.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// Ping always succeeds.
func (e *Engine) Ping(context.Context) error { return nil }

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// Search executes a query. Name matches rank above other matches; ties are
// broken by rating, review count and name.
func (e *Engine) Search(_ context.Context, query search.Query) (*search.Result, error) {
	start := time.Now()

	text := strings.ToLower(strings.TrimSpace(query.Text))
	city := strings.ToLower(strings.TrimSpace(query.City))

	e.mu.RLock()
	matched := make([]scored, 0)
	for _, d := range e.docs {
		score, ok := match(d, text, query.Category, city)
		if !ok {
			continue
		}
		matched = append(matched, scored{doc: d, score: score})
	}
	e.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.doc.AverageRating != b.doc.AverageRating {
			return a.doc.AverageRating > b.doc.AverageRating
		}
		if a.doc.TotalReviews != b.doc.TotalReviews {
			return a.doc.TotalReviews > b.doc.TotalReviews
		}
		return a.doc.Name < b.doc.Name
	})

	total := len(matched)
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	docs := make([]search.Document, 0, end-offset)
	for _, m := range matched[offset:end] {
		docs = append(docs, m.doc)
	}

	return &search.Result{
		Documents: docs,
		Total:     total,
		TookMs:    time.Since(start).Milliseconds(),
	}, nil
}

type scored struct {
	doc   search.Document
	score int
}

// match applies the filters and returns a relevance score.
func match(d search.Document, text, category, city string) (int, bool) {
	if !d.IsActive {
		return 0, false
	}
	if category != "" && d.Category != category {
		return 0, false
	}
	if city != "" && !strings.Contains(strings.ToLower(d.City), city) {
		return 0, false
	}
	if text == "" {
		return 0, true
	}

	switch {
	case strings.Contains(strings.ToLower(d.Name), text):
		return 3, true
	case strings.Contains(strings.ToLower(d.Description), text):
		return 2, true
	case strings.Contains(strings.ToLower(d.City), text):
		return 1, true
	default:
		return 0, false
	}
}

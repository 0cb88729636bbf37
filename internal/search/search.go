package search

import (
	"context"
	"time"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
)

// Document is a business as stored in the search index.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	CoverImage    string    `json:"cover_image,omitempty"`
	IsActive      bool      `json:"is_active"`
	IsVerified    bool      `json:"is_verified"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
}

// DocumentFromBusiness projects a business onto its index document.
func DocumentFromBusiness(b *domain.Business) Document {
	return Document{
		ID:            b.ID,
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Category:      b.Category,
		City:          b.City,
		State:         b.State,
		CoverImage:    b.CoverImage,
		IsActive:      b.IsActive,
		IsVerified:    b.IsVerified,
		AverageRating: b.AverageRating,
		TotalReviews:  b.TotalReviews,
		CreatedAt:     b.CreatedAt,
	}
}

// Query holds the parameters of a business search. Only active businesses
// are ever returned.
type Query struct {
	Text     string
	Category string
	City     string
	Page     int
	Limit    int
}

// Result is one page of matching documents.
type Result struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
	TookMs    int64      `json:"took_ms"`
}

// Engine indexes and searches business documents. Implementations may use
// Elasticsearch or in-process storage.
type Engine interface {
	// Index adds or updates a single document.
	Index(ctx context.Context, doc Document) error

	// Delete removes a document by id. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, id string) error

	// Search executes a query.
	Search(ctx context.Context, query Query) (*Result, error)

	// BulkIndex adds or updates many documents.
	BulkIndex(ctx context.Context, docs []Document) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

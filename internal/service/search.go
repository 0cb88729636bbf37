package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

// reindexBatchSize bounds a single bulk request.
const reindexBatchSize = 500

// SearchService answers full-text business searches from the search index
// and falls back to the database when the index is unavailable.
type SearchService struct {
	engine       search.Engine
	businessRepo repository.BusinessRepository
	logger       *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(engine search.Engine, businessRepo repository.BusinessRepository, logger *slog.Logger) *SearchService {
	return &SearchService{engine: engine, businessRepo: businessRepo, logger: logger}
}

// SearchInput holds the parameters of a business search.
type SearchInput struct {
	Query    string
	Category string
	City     string
	Page     pagination.Params
}

// Search returns active businesses matching the query.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (pagination.Result[search.Document], error) {
	res, err := s.engine.Search(ctx, search.Query{
		Text:     strings.TrimSpace(input.Query),
		Category: input.Category,
		City:     input.City,
		Page:     input.Page.Page,
		Limit:    input.Page.Limit,
	})
	if err == nil {
		return pagination.NewResult(res.Documents, res.Total, input.Page), nil
	}

	s.logger.WarnContext(ctx, "search index unavailable, falling back to database",
		slog.String("error", err.Error()),
	)

	businesses, total, err := s.businessRepo.List(ctx, repository.BusinessFilter{
		Category:   input.Category,
		City:       input.City,
		Search:     strings.TrimSpace(input.Query),
		Sort:       domain.SortRating,
		ActiveOnly: true,
		Page:       input.Page,
	})
	if err != nil {
		return pagination.Result[search.Document]{}, fmt.Errorf("search businesses: %w", err)
	}

	docs := make([]search.Document, 0, len(businesses))
	for i := range businesses {
		docs = append(docs, search.DocumentFromBusiness(&businesses[i]))
	}
	return pagination.NewResult(docs, total, input.Page), nil
}

// Reindex rebuilds the search index from the database and returns the
// number of documents written.
func (s *SearchService) Reindex(ctx context.Context, actor domain.Actor) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}

	n, err := s.Rebuild(ctx)
	if err != nil {
		return n, err
	}
	s.logger.InfoContext(ctx, "search index rebuilt by admin",
		slog.Int("documents", n),
		slog.String("admin_id", actor.UserID),
	)
	return n, nil
}

// Rebuild writes every business to the index in bulk batches. It runs at
// startup to seed an empty index.
func (s *SearchService) Rebuild(ctx context.Context) (int, error) {
	businesses, err := s.businessRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list businesses: %w", err)
	}

	indexed := 0
	for start := 0; start < len(businesses); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(businesses))

		batch := make([]search.Document, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, search.DocumentFromBusiness(&businesses[i]))
		}
		if err := s.engine.BulkIndex(ctx, batch); err != nil {
			return indexed, fmt.Errorf("bulk index: %w", err)
		}
		indexed += len(batch)
	}

	s.logger.InfoContext(ctx, "search index rebuilt", slog.Int("documents", indexed))
	return indexed, nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
)

// Default page sizes.
const (
	DefaultBusinessLimit = 12
	DefaultReviewLimit   = 10
	DefaultAdminLimit    = 10
)

// Fixed list sizes.
const (
	featuredLimit       = 6
	detailReviewLimit   = 5
	dashboardRecentSize = 5
)

// EventPublisher publishes domain events. Publication happens after the
// database change commits; failures are logged and never fail the request.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishReviewUpdated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error
	PublishReviewModerated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review, summary *domain.RatingSummary) error
	PublishBusiness(ctx context.Context, eventType string, business *domain.Business) error
}

func logPublishError(ctx context.Context, logger *slog.Logger, eventType, id string, err error) {
	if err == nil {
		return
	}
	logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
}

// invalidateCatalog drops the cached featured list and category counts.
// A cache failure only leaves entries to expire by TTL.
func invalidateCatalog(ctx context.Context, cache repository.CatalogCache, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "failed to invalidate catalog cache", slog.String("error", err.Error()))
	}
}

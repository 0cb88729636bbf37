package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	pkgkafka "github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
)

// RatingRecomputer rebuilds a business's rating projection.
type RatingRecomputer interface {
	Recompute(ctx context.Context, businessID string) (*domain.RatingSummary, error)
}

// BusinessLoader loads the current state of a business.
type BusinessLoader interface {
	GetByID(ctx context.Context, id string) (*domain.Business, error)
}

// CacheInvalidator drops cached catalog entries.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Projector consumes domain events and keeps the derived state in line with
// the database: it re-runs the rating recompute for review events, keeps the
// search index current and drops cached catalog entries.
type Projector struct {
	ratings    RatingRecomputer
	businesses BusinessLoader
	index      search.Engine
	cache      CacheInvalidator
	logger     *slog.Logger
}

// NewProjector creates a projector. cache may be nil.
func NewProjector(ratings RatingRecomputer, businesses BusinessLoader, index search.Engine, cache CacheInvalidator, logger *slog.Logger) *Projector {
	return &Projector{
		ratings:    ratings,
		businesses: businesses,
		index:      index,
		cache:      cache,
		logger:     logger,
	}
}

// Handle applies one event. It is safe to call more than once per event.
func (p *Projector) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case ReviewCreated, ReviewUpdated, ReviewApproved, ReviewRejected, ReviewDeleted:
		data, err := pkgkafka.DecodeData[ReviewEventData](evt)
		if err != nil {
			return err
		}
		if data.BusinessID == "" {
			data.BusinessID = evt.AggregateID
		}
		return p.reconcileReview(ctx, data.BusinessID)

	case BusinessDeleted:
		if err := p.index.Delete(ctx, evt.AggregateID); err != nil {
			return fmt.Errorf("remove business from index: %w", err)
		}
		p.invalidate(ctx)
		return nil

	case BusinessCreated, BusinessUpdated, BusinessVerified, BusinessActivated:
		if err := p.reindex(ctx, evt.AggregateID); err != nil {
			return err
		}
		p.invalidate(ctx)
		return nil

	default:
		p.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}
}

func (p *Projector) reconcileReview(ctx context.Context, businessID string) error {
	summary, err := p.ratings.Recompute(ctx, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The business was deleted after the event was published.
			return p.index.Delete(ctx, businessID)
		}
		return fmt.Errorf("recompute rating: %w", err)
	}

	p.logger.DebugContext(ctx, "rating reconciled",
		slog.String("business_id", businessID),
		slog.Float64("average_rating", summary.AverageRating),
		slog.Int("total_reviews", summary.TotalReviews),
	)

	if err := p.reindex(ctx, businessID); err != nil {
		return err
	}
	p.invalidate(ctx)
	return nil
}

func (p *Projector) reindex(ctx context.Context, businessID string) error {
	business, err := p.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return p.index.Delete(ctx, businessID)
		}
		return fmt.Errorf("load business: %w", err)
	}

	if err := p.index.Index(ctx, search.DocumentFromBusiness(business)); err != nil {
		return fmt.Errorf("index business: %w", err)
	}
	return nil
}

func (p *Projector) invalidate(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx); err != nil {
		p.logger.WarnContext(ctx, "failed to invalidate catalog cache", slog.String("error", err.Error()))
	}
}

package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	pkgkafka "github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
)

// Producer publishes review and business domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer on top of publisher, which is
// either a Kafka producer or a LocalBus.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publishReview(ctx, ReviewCreated, reviewData(review, nil))
}

// PublishReviewUpdated publishes a review.updated event. previous is the
// status before the edit.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error {
	data := reviewData(review, summary)
	if previous != review.Status {
		data.PreviousStatus = string(previous)
	}
	return p.publishReview(ctx, ReviewUpdated, data)
}

// PublishReviewModerated publishes review.approved or review.rejected
// according to the review's new status.
func (p *Producer) PublishReviewModerated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error {
	eventType := ReviewApproved
	if review.Status == domain.StatusRejected {
		eventType = ReviewRejected
	}

	data := reviewData(review, summary)
	data.PreviousStatus = string(previous)
	data.Reason = review.RejectionReason
	return p.publishReview(ctx, eventType, data)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review, summary *domain.RatingSummary) error {
	return p.publishReview(ctx, ReviewDeleted, reviewData(review, summary))
}

// PublishBusiness publishes a business.* event of the given type.
func (p *Producer) PublishBusiness(ctx context.Context, eventType string, business *domain.Business) error {
	data := BusinessEventData{
		BusinessID: business.ID,
		Name:       business.Name,
		Slug:       business.Slug,
		Category:   business.Category,
		OwnerID:    business.OwnerID,
		IsActive:   business.IsActive,
		IsVerified: business.IsVerified,
	}
	return p.publish(ctx, TopicBusinessEvents, eventType, business.ID, data)
}

func (p *Producer) publishReview(ctx context.Context, eventType string, data ReviewEventData) error {
	return p.publish(ctx, TopicReviewEvents, eventType, data.BusinessID, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, businessID string, data any) error {
	evt, err := pkgkafka.NewEvent(ctx, eventType, AggregateTypeBusiness, businessID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("event_id", evt.EventID),
		slog.String("business_id", businessID),
	)
	return nil
}

func reviewData(review *domain.Review, summary *domain.RatingSummary) ReviewEventData {
	data := ReviewEventData{
		ReviewID:   review.ID,
		BusinessID: review.BusinessID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		Status:     string(review.Status),
	}
	if summary != nil {
		avg, total := summary.AverageRating, summary.TotalReviews
		data.AverageRating = &avg
		data.TotalReviews = &total
	}
	return data
}

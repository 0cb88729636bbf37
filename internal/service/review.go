package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

// Messages returned with review mutations.
const (
	MsgReviewSubmitted = "Review submitted successfully! It will be visible after approval."
	MsgReviewDemoted   = "Review updated and pending approval"
	MsgReviewUpdated   = "Review updated successfully"
)

// ReviewService implements review submission, author edits and listing.
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	cache        repository.CatalogCache
	producer     EventPublisher
	logger       *slog.Logger
}

// NewReviewService creates a new review service. cache may be nil.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	cache repository.CatalogCache,
	producer EventPublisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		cache:        cache,
		producer:     producer,
		logger:       logger,
	}
}

// CreateReviewInput holds the parameters for submitting a review. Zero
// dimension ratings default to the overall rating.
type CreateReviewInput struct {
	BusinessID string
	Rating     int
	Quality    int
	Service    int
	Value      int
	Title      string
	Content    string
	Photos     []string
}

// UpdateReviewInput holds an author's edit. Nil fields are left unchanged.
type UpdateReviewInput struct {
	Rating  *int
	Quality *int
	Service *int
	Value   *int
	Title   *string
	Content *string
	Photos  []string
}

// Create submits a pending review. A user may review a business once.
func (s *ReviewService) Create(ctx context.Context, actor domain.Actor, input CreateReviewInput) (*domain.Review, error) {
	if actor.Anonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}

	if _, err := s.businessRepo.GetByID(ctx, input.BusinessID); err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:         uuid.New().String(),
		BusinessID: input.BusinessID,
		UserID:     actor.UserID,
		Rating:     input.Rating,
		Quality:    input.Quality,
		Service:    input.Service,
		Value:      input.Value,
		Title:      strings.TrimSpace(input.Title),
		Content:    strings.TrimSpace(input.Content),
		Photos:     input.Photos,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if review.Photos == nil {
		review.Photos = []string{}
	}
	review.FillDimensions()

	if err := validateReview(review); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	logPublishError(ctx, s.logger, "review.created", review.ID,
		s.producer.PublishReviewCreated(ctx, review))

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("business_id", review.BusinessID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return s.reload(ctx, review), nil
}

// Get returns a review. Approved reviews are public; pending and rejected
// ones are visible only to their author and admins, and look missing to
// anyone else.
func (s *ReviewService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	if review.Status != domain.StatusApproved && actor.UserID != review.UserID && !actor.IsAdmin() {
		return nil, apperrors.NotFound("Review")
	}
	return review, nil
}

// Update applies an author's edit. An approved review goes back to pending
// and the business rating is recomputed in the same transaction. The
// returned message tells the author whether the review awaits approval.
func (s *ReviewService) Update(ctx context.Context, actor domain.Actor, id string, input UpdateReviewInput) (*domain.Review, string, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get review: %w", err)
	}

	if !domain.CanModify(actor, review, domain.ActionUpdate) {
		return nil, "", apperrors.Forbidden("Not authorized to update this review")
	}

	applyReviewInput(review, input)
	if err := validateReview(review); err != nil {
		return nil, "", err
	}

	previous := review.Status
	review.Status = domain.StatusAfterEdit(previous)

	summary, err := s.reviewRepo.Update(ctx, review, previous)
	if err != nil {
		return nil, "", fmt.Errorf("update review: %w", err)
	}

	demoted := previous != review.Status
	if demoted {
		invalidateCatalog(ctx, s.cache, s.logger)
	}
	logPublishError(ctx, s.logger, "review.updated", review.ID,
		s.producer.PublishReviewUpdated(ctx, review, previous, summary))

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("status", string(review.Status)),
		slog.Bool("demoted", demoted),
	)

	msg := MsgReviewUpdated
	if demoted {
		msg = MsgReviewDemoted
	}
	return s.reload(ctx, review), msg, nil
}

// Delete removes a review. The author or an admin may delete it.
func (s *ReviewService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}

	if !domain.CanModify(actor, review, domain.ActionDelete) {
		return apperrors.Forbidden("Not authorized to delete this review")
	}

	summary, err := s.reviewRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if review.CountsTowardRating() {
		invalidateCatalog(ctx, s.cache, s.logger)
	}
	logPublishError(ctx, s.logger, "review.deleted", review.ID,
		s.producer.PublishReviewDeleted(ctx, review, summary))

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("business_id", review.BusinessID),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// ListByBusiness returns the approved reviews of a business, newest first.
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string, page pagination.Params) (pagination.Result[domain.Review], error) {
	reviews, total, err := s.reviewRepo.List(ctx, repository.ReviewFilter{
		BusinessID: businessID,
		Status:     domain.StatusApproved,
		Page:       page,
	})
	if err != nil {
		return pagination.Result[domain.Review]{}, fmt.Errorf("list business reviews: %w", err)
	}
	return pagination.NewResult(reviews, total, page), nil
}

// ListByUser returns every review written by the actor, in any status.
func (s *ReviewService) ListByUser(ctx context.Context, actor domain.Actor, page pagination.Params) (pagination.Result[domain.Review], error) {
	if actor.Anonymous() {
		return pagination.Result[domain.Review]{}, apperrors.Unauthorized("authentication required")
	}

	reviews, total, err := s.reviewRepo.List(ctx, repository.ReviewFilter{UserID: actor.UserID, Page: page})
	if err != nil {
		return pagination.Result[domain.Review]{}, fmt.Errorf("list user reviews: %w", err)
	}
	return pagination.NewResult(reviews, total, page), nil
}

// reload fetches the stored review with its user and business summaries,
// falling back to the in-memory copy.
func (s *ReviewService) reload(ctx context.Context, review *domain.Review) *domain.Review {
	stored, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to reload review",
				slog.String("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
		return review
	}
	return stored
}

func applyReviewInput(r *domain.Review, in UpdateReviewInput) {
	setInt := func(dst *int, src *int) {
		if src != nil && *src != 0 {
			*dst = *src
		}
	}
	setInt(&r.Rating, in.Rating)
	setInt(&r.Quality, in.Quality)
	setInt(&r.Service, in.Service)
	setInt(&r.Value, in.Value)
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		r.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) != "" {
		r.Content = strings.TrimSpace(*in.Content)
	}
	if in.Photos != nil {
		r.Photos = in.Photos
	}
}

func validateReview(r *domain.Review) error {
	dims := []struct {
		name  string
		value int
	}{{"rating", r.Rating}, {"quality", r.Quality}, {"service", r.Service}, {"value", r.Value}}
	for _, d := range dims {
		if d.value < domain.MinRating || d.value > domain.MaxRating {
			return apperrors.InvalidInput(fmt.Sprintf("%s must be between %d and %d", d.name, domain.MinRating, domain.MaxRating))
		}
	}
	if r.Title == "" {
		return apperrors.InvalidInput("title is required")
	}
	if r.Content == "" {
		return apperrors.InvalidInput("content is required")
	}
	if utf8.RuneCountInString(r.Title) > domain.MaxTitleLength {
		return apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength))
	}
	if utf8.RuneCountInString(r.Content) > domain.MaxContentLength {
		return apperrors.InvalidInput(fmt.Sprintf("content must be at most %d characters", domain.MaxContentLength))
	}
	return nil
}

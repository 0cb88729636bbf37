package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/event"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

// AdminService implements review moderation and the admin management
// endpoints. Every operation requires an admin actor.
type AdminService struct {
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	userRepo     repository.UserRepository
	cache        repository.CatalogCache
	producer     EventPublisher
	logger       *slog.Logger
}

// NewAdminService creates a new admin service. cache may be nil.
func NewAdminService(
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	userRepo repository.UserRepository,
	cache repository.CatalogCache,
	producer EventPublisher,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		cache:        cache,
		producer:     producer,
		logger:       logger,
	}
}

// DashboardStats are the site-wide counters shown on the admin dashboard.
type DashboardStats struct {
	TotalBusinesses int `json:"total_businesses"`
	TotalUsers      int `json:"total_users"`
	TotalReviews    int `json:"total_reviews"`
	PendingReviews  int `json:"pending_reviews"`
	ApprovedReviews int `json:"approved_reviews"`
	RejectedReviews int `json:"rejected_reviews"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Stats            DashboardStats    `json:"stats"`
	RecentReviews    []domain.Review   `json:"recent_reviews"`
	RecentBusinesses []domain.Business `json:"recent_businesses"`
}

func requireAdmin(actor domain.Actor) error {
	if actor.Anonymous() {
		return apperrors.Unauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}

// Dashboard returns site-wide counts and the most recent activity.
func (s *AdminService) Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	totalBusinesses, err := s.businessRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count businesses: %w", err)
	}
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	byStatus, err := s.reviewRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	recentReviews, err := s.reviewRepo.Recent(ctx, dashboardRecentSize)
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}
	recentBusinesses, err := s.businessRepo.Recent(ctx, dashboardRecentSize)
	if err != nil {
		return nil, fmt.Errorf("recent businesses: %w", err)
	}

	stats := DashboardStats{
		TotalBusinesses: totalBusinesses,
		TotalUsers:      totalUsers,
		PendingReviews:  byStatus[domain.StatusPending],
		ApprovedReviews: byStatus[domain.StatusApproved],
		RejectedReviews: byStatus[domain.StatusRejected],
	}
	stats.TotalReviews = stats.PendingReviews + stats.ApprovedReviews + stats.RejectedReviews

	return &Dashboard{Stats: stats, RecentReviews: recentReviews, RecentBusinesses: recentBusinesses}, nil
}

// PendingReviews lists reviews awaiting moderation, newest first.
func (s *AdminService) PendingReviews(ctx context.Context, actor domain.Actor, page pagination.Params) (pagination.Result[domain.Review], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Result[domain.Review]{}, err
	}

	reviews, total, err := s.reviewRepo.List(ctx, repository.ReviewFilter{Status: domain.StatusPending, Page: page})
	if err != nil {
		return pagination.Result[domain.Review]{}, fmt.Errorf("list pending reviews: %w", err)
	}
	return pagination.NewResult(reviews, total, page), nil
}

// ApproveReview moves a pending or rejected review to approved and
// recomputes the business rating in the same transaction.
func (s *AdminService) ApproveReview(ctx context.Context, actor domain.Actor, id string) (*domain.Review, error) {
	return s.moderate(ctx, actor, id, domain.StatusApproved, "")
}

// RejectReview moves a pending or approved review to rejected with a
// reason, recomputing the business rating in the same transaction.
func (s *AdminService) RejectReview(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Review, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = domain.DefaultRejectionReason
	}
	return s.moderate(ctx, actor, id, domain.StatusRejected, reason)
}

func (s *AdminService) moderate(ctx context.Context, actor domain.Actor, id string, to domain.ReviewStatus, reason string) (*domain.Review, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(reason) > domain.MaxRejectionReasonLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("reason must be at most %d characters", domain.MaxRejectionReasonLength))
	}

	current, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	if err := domain.CanTransition(current.Status, to, domain.ActorAdmin); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, apperrors.Conflict(strings.TrimPrefix(err.Error(), domain.ErrInvalidTransition.Error()+": "))
		}
		return nil, err
	}

	review, summary, err := s.reviewRepo.UpdateStatus(ctx, repository.StatusChange{
		ReviewID:        id,
		From:            current.Status,
		To:              to,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("moderate review: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	logPublishError(ctx, s.logger, "review."+string(to), review.ID,
		s.producer.PublishReviewModerated(ctx, review, current.Status, summary))

	attrs := []any{
		slog.String("review_id", review.ID),
		slog.String("business_id", review.BusinessID),
		slog.String("from", string(current.Status)),
		slog.String("to", string(to)),
		slog.String("admin_id", actor.UserID),
	}
	if summary != nil {
		attrs = append(attrs,
			slog.Float64("average_rating", summary.AverageRating),
			slog.Int("total_reviews", summary.TotalReviews),
		)
	}
	s.logger.InfoContext(ctx, "review moderated", attrs...)

	return review, nil
}

// Businesses lists every business, optionally filtered by verification.
func (s *AdminService) Businesses(ctx context.Context, actor domain.Actor, verified *bool, page pagination.Params) (pagination.Result[domain.Business], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Result[domain.Business]{}, err
	}

	businesses, total, err := s.businessRepo.List(ctx, repository.BusinessFilter{
		Verified: verified,
		Sort:     domain.SortNewest,
		Page:     page,
	})
	if err != nil {
		return pagination.Result[domain.Business]{}, fmt.Errorf("list businesses: %w", err)
	}
	return pagination.NewResult(businesses, total, page), nil
}

// SetVerified sets a business's verification flag.
func (s *AdminService) SetVerified(ctx context.Context, actor domain.Actor, id string, verified bool) (*domain.Business, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.SetVerified(ctx, id, verified)
	if err != nil {
		return nil, fmt.Errorf("set verified: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	logPublishError(ctx, s.logger, event.BusinessVerified, business.ID,
		s.producer.PublishBusiness(ctx, event.BusinessVerified, business))

	s.logger.InfoContext(ctx, "business verification changed",
		slog.String("business_id", business.ID),
		slog.Bool("is_verified", verified),
		slog.String("admin_id", actor.UserID),
	)
	return business, nil
}

// SetActive sets a business's active flag. Inactive businesses disappear
// from the public catalog and search.
func (s *AdminService) SetActive(ctx context.Context, actor domain.Actor, id string, active bool) (*domain.Business, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.SetActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	logPublishError(ctx, s.logger, event.BusinessActivated, business.ID,
		s.producer.PublishBusiness(ctx, event.BusinessActivated, business))

	s.logger.InfoContext(ctx, "business activation changed",
		slog.String("business_id", business.ID),
		slog.Bool("is_active", active),
		slog.String("admin_id", actor.UserID),
	)
	return business, nil
}

// DeleteBusiness removes any business and its reviews.
func (s *AdminService) DeleteBusiness(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get business: %w", err)
	}
	return deleteBusiness(ctx, s.businessRepo, s.cache, s.producer, s.logger, business, actor)
}

// Recalculate rebuilds a business's rating from its approved reviews.
func (s *AdminService) Recalculate(ctx context.Context, actor domain.Actor, id string) (*domain.RatingSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	summary, err := s.reviewRepo.Recompute(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recompute rating: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	if business, err := s.businessRepo.GetByID(ctx, id); err == nil {
		logPublishError(ctx, s.logger, event.BusinessUpdated, id,
			s.producer.PublishBusiness(ctx, event.BusinessUpdated, business))
	}

	s.logger.InfoContext(ctx, "rating recalculated",
		slog.String("business_id", id),
		slog.Float64("average_rating", summary.AverageRating),
		slog.Int("total_reviews", summary.TotalReviews),
	)
	return summary, nil
}

// Users lists accounts, optionally filtered by role.
func (s *AdminService) Users(ctx context.Context, actor domain.Actor, role string, page pagination.Params) (pagination.Result[domain.User], error) {
	if err := requireAdmin(actor); err != nil {
		return pagination.Result[domain.User]{}, err
	}

	users, total, err := s.userRepo.List(ctx, repository.UserFilter{Role: role, Page: page})
	if err != nil {
		return pagination.Result[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return pagination.NewResult(users, total, page), nil
}

// UpdateRole changes a user's role.
func (s *AdminService) UpdateRole(ctx context.Context, actor domain.Actor, id, role string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !domain.IsValidRole(role) {
		return nil, apperrors.InvalidInput("Invalid role")
	}

	user, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logger.InfoContext(ctx, "user role updated",
		slog.String("user_id", user.ID),
		slog.String("role", role),
		slog.String("admin_id", actor.UserID),
	)
	return user, nil
}

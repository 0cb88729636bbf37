package repository

import (
	"context"
	"time"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

// BusinessFilter defines filter criteria for listing businesses.
type BusinessFilter struct {
	Category string
	// City, State and Search match case-insensitive substrings.
	City   string
	State  string
	Search string
	Sort   string
	// ActiveOnly restricts the public listing to active businesses.
	ActiveOnly bool
	// Verified filters the admin listing when set.
	Verified *bool
	Page     pagination.Params
}

// BusinessRepository defines the interface for business persistence operations.
type BusinessRepository interface {
	// Create inserts a new business. A taken slug yields ErrAlreadyExists.
	Create(ctx context.Context, business *domain.Business) error

	// GetByID retrieves a business with its owner summary.
	GetByID(ctx context.Context, id string) (*domain.Business, error)

	// GetByIDOrSlug resolves either a uuid or a slug.
	GetByIDOrSlug(ctx context.Context, idOrSlug string) (*domain.Business, error)

	// List returns businesses matching the filter along with the total count.
	List(ctx context.Context, filter BusinessFilter) ([]domain.Business, int, error)

	// Featured returns up to limit verified, active businesses by rating.
	Featured(ctx context.Context, limit int) ([]domain.Business, error)

	// CategoryCounts counts active businesses per category.
	CategoryCounts(ctx context.Context) (map[string]int, error)

	// SlugExists reports whether slug is taken by a business other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// Update writes the editable fields. The rating projection is never
	// written here.
	Update(ctx context.Context, business *domain.Business) error

	// SetVerified sets the verification flag.
	SetVerified(ctx context.Context, id string, verified bool) (*domain.Business, error)

	// SetActive sets the active flag.
	SetActive(ctx context.Context, id string, active bool) (*domain.Business, error)

	// Delete removes a business and its reviews in one transaction.
	Delete(ctx context.Context, id string) error

	// Recent returns the most recently created businesses.
	Recent(ctx context.Context, limit int) ([]domain.Business, error)

	// ListAll returns every business, for reindexing.
	ListAll(ctx context.Context) ([]domain.Business, error)

	// Count returns the number of businesses.
	Count(ctx context.Context) (int, error)
}

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	BusinessID string
	UserID     string
	Status     domain.ReviewStatus
	Page       pagination.Params
}

// StatusChange is a moderation transition applied under an optimistic guard
// on the current status.
type StatusChange struct {
	ReviewID        string
	From            domain.ReviewStatus
	To              domain.ReviewStatus
	RejectionReason string
}

// ReviewRepository defines the interface for review persistence operations.
// Every mutation that can change a business's approved set recomputes that
// business's rating in the same transaction.
type ReviewRepository interface {
	// Create inserts a pending review. A second review of the same business
	// by the same user yields the ALREADY_REVIEWED rule error.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review with its user and business summaries.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns reviews matching the filter, newest first, with the total.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// LatestApproved returns the newest approved reviews of a business.
	LatestApproved(ctx context.Context, businessID string, limit int) ([]domain.Review, error)

	// Recent returns the newest reviews across all businesses.
	Recent(ctx context.Context, limit int) ([]domain.Review, error)

	// Update writes the author-editable fields and status, then recomputes.
	// A review no longer in status from yields ErrConflict.
	Update(ctx context.Context, review *domain.Review, from domain.ReviewStatus) (*domain.RatingSummary, error)

	// UpdateStatus applies a moderation transition, then recomputes. A review
	// no longer in change.From yields ErrConflict.
	UpdateStatus(ctx context.Context, change StatusChange) (*domain.Review, *domain.RatingSummary, error)

	// Delete removes a review, then recomputes.
	Delete(ctx context.Context, id string) (*domain.RatingSummary, error)

	// Recompute rebuilds a business's rating from its approved reviews.
	Recompute(ctx context.Context, businessID string) (*domain.RatingSummary, error)

	// RatingStats averages every dimension over approved reviews.
	RatingStats(ctx context.Context, businessID string) (domain.RatingStats, error)

	// CountByStatus counts reviews per moderation status.
	CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int, error)
}

// UserFilter defines filter criteria for listing users.
type UserFilter struct {
	Role string
	Page pagination.Params
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A taken email or username yields
	// ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users matching the filter along with the total count.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)

	// UpdateRole changes a user's role.
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}

// CatalogCache caches the featured list and category counts.
type CatalogCache interface {
	GetFeatured(ctx context.Context) ([]domain.Business, bool, error)
	SetFeatured(ctx context.Context, businesses []domain.Business) error
	GetCategories(ctx context.Context) ([]domain.CategoryInfo, bool, error)
	SetCategories(ctx context.Context, categories []domain.CategoryInfo) error
	// Invalidate drops every cached catalog entry.
	Invalidate(ctx context.Context) error
}

package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Business Repository ---

type mockBusinessRepository struct {
	mock.Mock
}

func (m *mockBusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *mockBusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*domain.Business, error) {
	args := m.Called(ctx, idOrSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) List(ctx context.Context, filter repository.BusinessFilter) ([]domain.Business, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Business), args.Int(1), args.Error(2)
}

func (m *mockBusinessRepository) Featured(ctx context.Context, limit int) ([]domain.Business, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) CategoryCounts(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockBusinessRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBusinessRepository) Update(ctx context.Context, business *domain.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *mockBusinessRepository) SetVerified(ctx context.Context, id string, verified bool) (*domain.Business, error) {
	args := m.Called(ctx, id, verified)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Business, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBusinessRepository) Recent(ctx context.Context, limit int) ([]domain.Business, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) ListAll(ctx context.Context) ([]domain.Business, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *mockBusinessRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) LatestApproved(ctx context.Context, businessID string, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, businessID, limit)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Recent(ctx context.Context, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review, from domain.ReviewStatus) (*domain.RatingSummary, error) {
	args := m.Called(ctx, review, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockReviewRepository) UpdateStatus(ctx context.Context, change repository.StatusChange) (*domain.Review, *domain.RatingSummary, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	summary, _ := args.Get(1).(*domain.RatingSummary)
	return args.Get(0).(*domain.Review), summary, args.Error(2)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockReviewRepository) Recompute(ctx context.Context, businessID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func (m *mockReviewRepository) RatingStats(ctx context.Context, businessID string) (domain.RatingStats, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(domain.RatingStats), args.Error(1)
}

func (m *mockReviewRepository) CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.ReviewStatus]int), args.Error(1)
}

// --- Mock Catalog Cache ---

type mockCatalogCache struct {
	mock.Mock
}

func (m *mockCatalogCache) GetFeatured(ctx context.Context) ([]domain.Business, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.Business), args.Bool(1), args.Error(2)
}

func (m *mockCatalogCache) SetFeatured(ctx context.Context, businesses []domain.Business) error {
	args := m.Called(ctx, businesses)
	return args.Error(0)
}

func (m *mockCatalogCache) GetCategories(ctx context.Context) ([]domain.CategoryInfo, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.CategoryInfo), args.Bool(1), args.Error(2)
}

func (m *mockCatalogCache) SetCategories(ctx context.Context, categories []domain.CategoryInfo) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *mockCatalogCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewUpdated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error {
	args := m.Called(ctx, review, previous, summary)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewModerated(ctx context.Context, review *domain.Review, previous domain.ReviewStatus, summary *domain.RatingSummary) error {
	args := m.Called(ctx, review, previous, summary)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewDeleted(ctx context.Context, review *domain.Review, summary *domain.RatingSummary) error {
	args := m.Called(ctx, review, summary)
	return args.Error(0)
}

func (m *mockPublisher) PublishBusiness(ctx context.Context, eventType string, business *domain.Business) error {
	args := m.Called(ctx, eventType, business)
	return args.Error(0)
}

// --- Fixtures ---

const (
	ownerID    = "3f2b8c1e-5a4d-4e6f-9b7a-1c2d3e4f5a6b"
	authorID   = "5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b"
	otherID    = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	adminID    = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	businessID = "7a1e3c9b-0d6f-4e1a-9b2c-5f8d7e6a4b31"
	reviewID   = "c4d5e6f7-8a9b-4c0d-9e1f-2a3b4c5d6e7f"
)

var (
	ownerActor  = domain.Actor{UserID: ownerID, Role: domain.RoleUser}
	authorActor = domain.Actor{UserID: authorID, Role: domain.RoleUser}
	otherActor  = domain.Actor{UserID: otherID, Role: domain.RoleUser}
	adminActor  = domain.Actor{UserID: adminID, Role: domain.RoleAdmin}
)

func sampleBusiness() *domain.Business {
	now := time.Now().UTC()
	return &domain.Business{
		ID:          businessID,
		Name:        "Blue Door Cafe",
		Slug:        "blue-door-cafe",
		Description: "Espresso and pastries",
		Category:    domain.CategoryRestaurant,
		Address:     "12 Main St",
		City:        "Portland",
		State:       "OR",
		ZipCode:     "97201",
		Images:      []string{},
		OwnerID:     ownerID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sampleReview(status domain.ReviewStatus) *domain.Review {
	now := time.Now().UTC()
	return &domain.Review{
		ID:         reviewID,
		BusinessID: businessID,
		UserID:     authorID,
		Rating:     4,
		Quality:    4,
		Service:    4,
		Value:      4,
		Title:      "Great coffee",
		Content:    "Friendly staff and a quiet patio.",
		Photos:     []string{},
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func ptr[T any](v T) *T { return &v }

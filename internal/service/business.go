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
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/event"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	apperrors "github.com/infLocus/Crowdsourced-Review-Platform/pkg/errors"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/slug"
)

// BusinessService implements the public business catalog and owner edits.
type BusinessService struct {
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
	cache        repository.CatalogCache
	producer     EventPublisher
	logger       *slog.Logger
}

// NewBusinessService creates a new business service. cache may be nil.
func NewBusinessService(
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	cache repository.CatalogCache,
	producer EventPublisher,
	logger *slog.Logger,
) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		cache:        cache,
		producer:     producer,
		logger:       logger,
	}
}

// BusinessInput holds the editable fields of a business. On update, nil
// fields are left unchanged.
type BusinessInput struct {
	Name        *string
	Description *string
	Category    *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Phone       *string
	Email       *string
	Website     *string
	Images      []string
	CoverImage  *string
}

// List returns active businesses matching the filter.
func (s *BusinessService) List(ctx context.Context, filter repository.BusinessFilter) (pagination.Result[domain.Business], error) {
	filter.ActiveOnly = true
	filter.Verified = nil
	filter.Sort = domain.NormalizeSort(filter.Sort)

	businesses, total, err := s.businessRepo.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Business]{}, fmt.Errorf("list businesses: %w", err)
	}
	return pagination.NewResult(businesses, total, filter.Page), nil
}

// Featured returns the top verified, active businesses. The result is read
// through the catalog cache.
func (s *BusinessService) Featured(ctx context.Context) ([]domain.Business, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetFeatured(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", "featured"), slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}

	businesses, err := s.businessRepo.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("featured businesses: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetFeatured(ctx, businesses); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", slog.String("key", "featured"), slog.String("error", err.Error()))
		}
	}
	return businesses, nil
}

// Categories returns the fixed category list with live counts of active
// businesses, read through the catalog cache.
func (s *BusinessService) Categories(ctx context.Context) ([]domain.CategoryInfo, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", "categories"), slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}

	counts, err := s.businessRepo.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	categories := domain.CategoriesWithCounts(counts)

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", slog.String("key", "categories"), slog.String("error", err.Error()))
		}
	}
	return categories, nil
}

// Get returns a business by id or slug with its latest approved reviews and
// rating statistics.
func (s *BusinessService) Get(ctx context.Context, idOrSlug string) (*domain.BusinessDetail, error) {
	business, err := s.businessRepo.GetByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	reviews, err := s.reviewRepo.LatestApproved(ctx, business.ID, detailReviewLimit)
	if err != nil {
		return nil, fmt.Errorf("latest reviews: %w", err)
	}

	stats, err := s.reviewRepo.RatingStats(ctx, business.ID)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}

	return &domain.BusinessDetail{Business: business, Reviews: reviews, RatingStats: stats}, nil
}

// Create registers a new business owned by the actor.
func (s *BusinessService) Create(ctx context.Context, actor domain.Actor, input BusinessInput) (*domain.Business, error) {
	if actor.Anonymous() {
		return nil, apperrors.Unauthorized("authentication required")
	}

	now := time.Now().UTC()
	business := &domain.Business{
		ID:        uuid.New().String(),
		OwnerID:   actor.UserID,
		Images:    []string{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyBusinessInput(business, input)

	if err := validateBusiness(business); err != nil {
		return nil, err
	}

	if err := s.assignSlug(ctx, business); err != nil {
		return nil, err
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("create business: %w", err)
		}
		// Slug taken between the check and the insert.
		business.Slug = slug.WithSuffix(slug.Generate(business.Name))
		if err := s.businessRepo.Create(ctx, business); err != nil {
			return nil, fmt.Errorf("create business: %w", err)
		}
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	logPublishError(ctx, s.logger, event.BusinessCreated, business.ID,
		s.producer.PublishBusiness(ctx, event.BusinessCreated, business))

	s.logger.InfoContext(ctx, "business created",
		slog.String("business_id", business.ID),
		slog.String("slug", business.Slug),
		slog.String("owner_id", business.OwnerID),
	)

	return business, nil
}

// Update edits a business. Only its owner or an admin may update it. The
// rating projection is never written here.
func (s *BusinessService) Update(ctx context.Context, actor domain.Actor, id string, input BusinessInput) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	if !domain.CanModify(actor, business, domain.ActionUpdate) {
		return nil, apperrors.Forbidden("Not authorized to update this business")
	}

	oldName := business.Name
	applyBusinessInput(business, input)
	if err := validateBusiness(business); err != nil {
		return nil, err
	}

	if business.Name != oldName {
		if err := s.assignSlug(ctx, business); err != nil {
			return nil, err
		}
	}
	business.UpdatedAt = time.Now().UTC()

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	logPublishError(ctx, s.logger, event.BusinessUpdated, business.ID,
		s.producer.PublishBusiness(ctx, event.BusinessUpdated, business))

	s.logger.InfoContext(ctx, "business updated",
		slog.String("business_id", business.ID),
		slog.String("actor_id", actor.UserID),
	)

	return business, nil
}

// Delete removes a business and all its reviews. Only its owner or an admin
// may delete it.
func (s *BusinessService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get business: %w", err)
	}

	if !domain.CanModify(actor, business, domain.ActionDelete) {
		return apperrors.Forbidden("Not authorized to delete this business")
	}

	return deleteBusiness(ctx, s.businessRepo, s.cache, s.producer, s.logger, business, actor)
}

func deleteBusiness(
	ctx context.Context,
	repo repository.BusinessRepository,
	cache repository.CatalogCache,
	producer EventPublisher,
	logger *slog.Logger,
	business *domain.Business,
	actor domain.Actor,
) error {
	if err := repo.Delete(ctx, business.ID); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}

	invalidateCatalog(ctx, cache, logger)
	logPublishError(ctx, logger, event.BusinessDeleted, business.ID,
		producer.PublishBusiness(ctx, event.BusinessDeleted, business))

	logger.InfoContext(ctx, "business deleted",
		slog.String("business_id", business.ID),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// assignSlug derives the slug from the name, adding a random suffix when the
// plain slug is taken by another business.
func (s *BusinessService) assignSlug(ctx context.Context, business *domain.Business) error {
	base := slug.Generate(business.Name)
	if base == "" {
		business.Slug = slug.WithSuffix("")
		return nil
	}

	taken, err := s.businessRepo.SlugExists(ctx, base, business.ID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		base = slug.WithSuffix(base)
	}
	business.Slug = base
	return nil
}

func applyBusinessInput(b *domain.Business, in BusinessInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&b.Name, in.Name)
	set(&b.Description, in.Description)
	set(&b.Category, in.Category)
	set(&b.Address, in.Address)
	set(&b.City, in.City)
	set(&b.State, in.State)
	set(&b.ZipCode, in.ZipCode)
	set(&b.Phone, in.Phone)
	set(&b.Email, in.Email)
	set(&b.Website, in.Website)
	set(&b.CoverImage, in.CoverImage)
	b.Email = strings.ToLower(b.Email)
	if in.Images != nil {
		b.Images = in.Images
	}
}

func validateBusiness(b *domain.Business) error {
	switch {
	case b.Name == "":
		return apperrors.InvalidInput("name is required")
	case utf8.RuneCountInString(b.Name) > domain.MaxNameLength:
		return apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", domain.MaxNameLength))
	case utf8.RuneCountInString(b.Description) > domain.MaxDescriptionLength:
		return apperrors.InvalidInput(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength))
	case !domain.IsValidCategory(b.Category):
		return apperrors.InvalidInput("invalid category: " + b.Category)
	case b.Address == "", b.City == "", b.State == "", b.ZipCode == "":
		return apperrors.InvalidInput("address, city, state and zip code are required")
	}
	return nil
}

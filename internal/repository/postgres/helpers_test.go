package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const (
	businessID = "6f1c2a4e-1b7d-4f0a-9c55-0d1e2f3a4b5c"
	ownerID    = "0a9b8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d"
	reviewID   = "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f"
	authorID   = "9e8d7c6b-5a4f-4e3d-9c2b-1a0f9e8d7c6b"
)

var businessCols = []string{
	"id", "name", "slug", "description", "category", "address", "city", "state", "zip_code",
	"phone", "email", "website", "images", "cover_image", "owner_id", "is_verified", "is_active",
	"average_rating", "total_reviews", "created_at", "updated_at",
	"owner_username", "owner_avatar",
}

var businessColsWithCount = append(append([]string{}, businessCols...), "total_count")

func sampleBusiness() domain.Business {
	return domain.Business{
		ID:            businessID,
		Name:          "Blue Door Cafe",
		Slug:          "blue-door-cafe",
		Description:   "Espresso and pastries",
		Category:      domain.CategoryRestaurant,
		Address:       "12 Main St",
		City:          "Portland",
		State:         "OR",
		ZipCode:       "97201",
		Images:        []string{"https://img.example.com/1.jpg"},
		OwnerID:       ownerID,
		IsVerified:    true,
		IsActive:      true,
		AverageRating: 4.5,
		TotalReviews:  2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func businessRow(b domain.Business) []any {
	return []any{
		b.ID, b.Name, b.Slug, b.Description, b.Category, b.Address, b.City, b.State, b.ZipCode,
		b.Phone, b.Email, b.Website, b.Images, b.CoverImage, b.OwnerID, b.IsVerified, b.IsActive,
		b.AverageRating, b.TotalReviews, b.CreatedAt, b.UpdatedAt,
		"owner", "",
	}
}

var reviewCols = []string{
	"id", "business_id", "user_id", "rating", "quality", "service", "value", "title", "content",
	"photos", "status", "rejection_reason", "helpful", "created_at", "updated_at",
	"username", "avatar", "email",
	"business_name", "business_slug", "business_category", "business_city", "business_state",
}

var reviewColsWithCount = append(append([]string{}, reviewCols...), "total_count")

func sampleReview() domain.Review {
	return domain.Review{
		ID:         reviewID,
		BusinessID: businessID,
		UserID:     authorID,
		Rating:     4,
		Quality:    4,
		Service:    5,
		Value:      3,
		Title:      "Great coffee",
		Content:    "Friendly staff and a quiet corner to work.",
		Photos:     []string{},
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func reviewRow(r domain.Review) []any {
	return []any{
		r.ID, r.BusinessID, r.UserID, r.Rating, r.Quality, r.Service, r.Value, r.Title, r.Content,
		r.Photos, string(r.Status), r.RejectionReason, r.Helpful, r.CreatedAt, r.UpdatedAt,
		"ada", "", "ada@example.com",
		"Blue Door Cafe", "blue-door-cafe", "restaurant", "Portland", "OR",
	}
}

func ratingRows(avg float64, total int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"average_rating", "total_reviews"}).AddRow(avg, total)
}

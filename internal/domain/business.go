package domain

import "time"

// Category constants define the business categories.
const (
	CategoryRestaurant    = "restaurant"
	CategoryShop          = "shop"
	CategoryService       = "service"
	CategoryHealthcare    = "healthcare"
	CategoryEntertainment = "entertainment"
	CategoryOther         = "other"
)

// CategoryInfo describes a category for display along with its live count.
type CategoryInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// Categories returns the fixed category list in display order with zero
// counts.
func Categories() []CategoryInfo {
	return []CategoryInfo{
		{Name: CategoryRestaurant, Label: "Restaurants", Icon: "utensils"},
		{Name: CategoryShop, Label: "Shops", Icon: "shopping-bag"},
		{Name: CategoryService, Label: "Services", Icon: "tools"},
		{Name: CategoryHealthcare, Label: "Healthcare", Icon: "heart"},
		{Name: CategoryEntertainment, Label: "Entertainment", Icon: "film"},
		{Name: CategoryOther, Label: "Other", Icon: "ellipsis-h"},
	}
}

// IsValidCategory reports whether c names a known category.
func IsValidCategory(c string) bool {
	for _, info := range Categories() {
		if info.Name == c {
			return true
		}
	}
	return false
}

// CategoriesWithCounts fills the fixed list from a category -> count map.
// Unknown categories in counts are ignored.
func CategoriesWithCounts(counts map[string]int) []CategoryInfo {
	list := Categories()
	for i := range list {
		list[i].Count = counts[list[i].Name]
	}
	return list
}

// Business text limits, in characters.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
)

// Business is a listed local establishment.
//
// AverageRating and TotalReviews are a projection of the business's approved
// reviews and are only ever written by the rating recompute.
type Business struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	ZipCode       string       `json:"zip_code"`
	Phone         string       `json:"phone,omitempty"`
	Email         string       `json:"email,omitempty"`
	Website       string       `json:"website,omitempty"`
	Images        []string     `json:"images"`
	CoverImage    string       `json:"cover_image,omitempty"`
	OwnerID       string       `json:"owner_id"`
	Owner         *UserSummary `json:"owner,omitempty"`
	IsVerified    bool         `json:"is_verified"`
	IsActive      bool         `json:"is_active"`
	AverageRating float64      `json:"average_rating"`
	TotalReviews  int          `json:"total_reviews"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// BusinessSummary is the projection of a business embedded in reviews.
type BusinessSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug,omitempty"`
	Category string   `json:"category,omitempty"`
	City     string   `json:"city,omitempty"`
	State    string   `json:"state,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// RatingStats aggregates the approved reviews of one business.
type RatingStats struct {
	AvgRating  float64 `json:"avg_rating"`
	AvgQuality float64 `json:"avg_quality"`
	AvgService float64 `json:"avg_service"`
	AvgValue   float64 `json:"avg_value"`
	Count      int     `json:"count"`
}

// RatingSummary is the stored projection written by the recompute.
type RatingSummary struct {
	BusinessID    string  `json:"business_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// BusinessDetail is a business with its latest approved reviews and stats.
type BusinessDetail struct {
	Business    *Business   `json:"business"`
	Reviews     []Review    `json:"reviews"`
	RatingStats RatingStats `json:"rating_stats"`
}

// Business sort orders.
const (
	SortNewest = "newest"
	SortRating = "rating"
	SortName   = "name"
)

// NormalizeSort maps a requested sort to a known order, defaulting to newest.
func NormalizeSort(s string) string {
	switch s {
	case SortRating, SortName:
		return s
	default:
		return SortNewest
	}
}

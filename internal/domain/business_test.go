package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoriesWithCounts(t *testing.T) {
	list := CategoriesWithCounts(map[string]int{"restaurant": 3, "other": 1, "bogus": 9})

	assert.Len(t, list, 6)
	assert.Equal(t, CategoryInfo{Name: "restaurant", Label: "Restaurants", Icon: "utensils", Count: 3}, list[0])
	assert.Equal(t, 0, list[1].Count)
	assert.Equal(t, 1, list[5].Count)
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("healthcare"))
	assert.False(t, IsValidCategory("Healthcare"))
	assert.False(t, IsValidCategory(""))
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, SortRating, NormalizeSort("rating"))
	assert.Equal(t, SortName, NormalizeSort("name"))
	assert.Equal(t, SortNewest, NormalizeSort(""))
	assert.Equal(t, SortNewest, NormalizeSort("price"))
}

func TestReview_FillDimensions(t *testing.T) {
	r := &Review{Rating: 4, Service: 2}
	r.FillDimensions()
	assert.Equal(t, 4, r.Quality)
	assert.Equal(t, 2, r.Service)
	assert.Equal(t, 4, r.Value)
}

func TestActor(t *testing.T) {
	assert.True(t, Actor{}.Anonymous())
	assert.False(t, Actor{Role: RoleAdmin}.IsAdmin())
	assert.True(t, Actor{UserID: "u", Role: RoleAdmin}.IsAdmin())
	assert.True(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("seller"))
}

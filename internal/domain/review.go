package domain

import "time"

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

// Review moderation states.
const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DefaultRejectionReason is recorded when an admin rejects without a reason.
const DefaultRejectionReason = "Your review does not meet our guidelines"

// Rating bounds shared by all four dimensions.
const (
	MinRating = 1
	MaxRating = 5
)

// Review text limits, in characters.
const (
	MaxTitleLength           = 100
	MaxContentLength         = 2000
	MaxRejectionReasonLength = 500
)

// Review is a user's moderated evaluation of one business.
type Review struct {
	ID              string           `json:"id"`
	BusinessID      string           `json:"business_id"`
	UserID          string           `json:"user_id"`
	Rating          int              `json:"rating"`
	Quality         int              `json:"quality"`
	Service         int              `json:"service"`
	Value           int              `json:"value"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Photos          []string         `json:"photos"`
	Status          ReviewStatus     `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Helpful         int              `json:"helpful"`
	User            *UserSummary     `json:"user,omitempty"`
	Business        *BusinessSummary `json:"business,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// FillDimensions defaults quality, service and value to the overall rating.
func (r *Review) FillDimensions() {
	if r.Quality == 0 {
		r.Quality = r.Rating
	}
	if r.Service == 0 {
		r.Service = r.Rating
	}
	if r.Value == 0 {
		r.Value = r.Rating
	}
}

// CountsTowardRating reports whether the review is part of the aggregate.
func (r *Review) CountsTowardRating() bool {
	return r.Status == StatusApproved
}

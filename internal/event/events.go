package event

import (
	pkgkafka "github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
)

// Topics carrying the directory's domain events.
var (
	TopicReviewEvents   = pkgkafka.Topic("review", "events")
	TopicBusinessEvents = pkgkafka.Topic("business", "events")
)

// Review event types.
const (
	ReviewCreated  = "review.created"
	ReviewUpdated  = "review.updated"
	ReviewApproved = "review.approved"
	ReviewRejected = "review.rejected"
	ReviewDeleted  = "review.deleted"
)

// Business event types.
const (
	BusinessCreated   = "business.created"
	BusinessUpdated   = "business.updated"
	BusinessDeleted   = "business.deleted"
	BusinessVerified  = "business.verified"
	BusinessActivated = "business.activated"
)

// Every event's aggregate is the business, so that all events touching one
// business share a partition key.
const AggregateTypeBusiness = "business"

// Source identifies events emitted by this service.
const Source = "directory"

// ReviewEventData is the payload of every review.* event. AverageRating and
// TotalReviews are the projection committed with the change, when known.
type ReviewEventData struct {
	ReviewID       string `json:"review_id"`
	BusinessID     string `json:"business_id"`
	UserID         string `json:"user_id"`
	Rating         int    `json:"rating"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Reason         string `json:"reason,omitempty"`

	AverageRating *float64 `json:"average_rating,omitempty"`
	TotalReviews  *int     `json:"total_reviews,omitempty"`
}

// BusinessEventData is the payload of every business.* event.
type BusinessEventData struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Category   string `json:"category"`
	OwnerID    string `json:"owner_id"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
}

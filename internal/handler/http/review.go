package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/httputil"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for submitting a review.
// Omitted dimension ratings default to the overall rating.
type CreateReviewRequest struct {
	BusinessID string   `json:"business_id" validate:"required,uuid"`
	Rating     int      `json:"rating" validate:"required,min=1,max=5"`
	Quality    int      `json:"quality" validate:"omitempty,min=1,max=5"`
	Service    int      `json:"service" validate:"omitempty,min=1,max=5"`
	Value      int      `json:"value" validate:"omitempty,min=1,max=5"`
	Title      string   `json:"title" validate:"required,max=100"`
	Content    string   `json:"content" validate:"required,max=2000"`
	Photos     []string `json:"photos" validate:"max=10,dive,url"`
}

// UpdateReviewRequest is the JSON request body for an author's edit.
type UpdateReviewRequest struct {
	Rating  *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Quality *int     `json:"quality" validate:"omitempty,min=1,max=5"`
	Service *int     `json:"service" validate:"omitempty,min=1,max=5"`
	Value   *int     `json:"value" validate:"omitempty,min=1,max=5"`
	Title   *string  `json:"title" validate:"omitempty,max=100"`
	Content *string  `json:"content" validate:"omitempty,max=2000"`
	Photos  []string `json:"photos" validate:"omitempty,max=10,dive,url"`
}

// --- Handlers ---

// ListByBusiness handles GET /api/v1/reviews/business/{businessId}
func (h *ReviewHandler) ListByBusiness(w http.ResponseWriter, r *http.Request) {
	businessID, ok := httputil.ParseUUID(w, chi.URLParam(r, "businessId"))
	if !ok {
		return
	}

	result, err := h.service.ListByBusiness(r.Context(), businessID.String(), pagination.FromRequest(r, service.DefaultReviewLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// ListMine handles GET /api/v1/reviews/user
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListByUser(r.Context(), actorFrom(r), pagination.FromRequest(r, pagination.MaxLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// Get handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.Get(r.Context(), actorFrom(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.Create(r.Context(), actorFrom(r), service.CreateReviewInput{
		BusinessID: req.BusinessID,
		Rating:     req.Rating,
		Quality:    req.Quality,
		Service:    req.Service,
		Value:      req.Value,
		Title:      req.Title,
		Content:    req.Content,
		Photos:     req.Photos,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, service.MsgReviewSubmitted, review)
}

// Update handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, msg, err := h.service.Update(r.Context(), actorFrom(r), id.String(), service.UpdateReviewInput{
		Rating:  req.Rating,
		Quality: req.Quality,
		Service: req.Service,
		Value:   req.Value,
		Title:   req.Title,
		Content: req.Content,
		Photos:  req.Photos,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, msg, review)
}

// Delete handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actorFrom(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Review deleted successfully", nil)
}

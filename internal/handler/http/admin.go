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

// AdminHandler handles HTTP requests for the admin endpoints.
type AdminHandler struct {
	service *service.AdminService
	search  *service.SearchService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AdminService, search *service.SearchService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, search: search, logger: logger}
}

// --- Request DTOs ---

// RejectReviewRequest is the optional JSON body of a rejection.
type RejectReviewRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// VerifyBusinessRequest sets the verification flag.
type VerifyBusinessRequest struct {
	IsVerified *bool `json:"is_verified" validate:"required"`
}

// ActivateBusinessRequest sets the active flag.
type ActivateBusinessRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UpdateRoleRequest changes a user's role. The role itself is checked by
// the service so an unknown role reports "Invalid role".
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// --- Handlers ---

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context(), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, dash)
}

// PendingReviews handles GET /api/v1/admin/reviews/pending
func (h *AdminHandler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PendingReviews(r.Context(), actorFrom(r), pagination.FromRequest(r, service.DefaultAdminLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// ApproveReview handles PUT /api/v1/admin/reviews/{id}/approve
func (h *AdminHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.ApproveReview(r.Context(), actorFrom(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Review approved successfully", review)
}

// RejectReview handles PUT /api/v1/admin/reviews/{id}/reject
// The body is optional; an empty reason records the default one.
func (h *AdminHandler) RejectReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req RejectReviewRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(w, r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	review, err := h.service.RejectReview(r.Context(), actorFrom(r), id.String(), req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Review rejected", review)
}

// Businesses handles GET /api/v1/admin/businesses?verified=
func (h *AdminHandler) Businesses(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Businesses(r.Context(), actorFrom(r), queryBool(r, "verified"),
		pagination.FromRequest(r, service.DefaultAdminLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// VerifyBusiness handles PUT /api/v1/admin/businesses/{id}/verify
func (h *AdminHandler) VerifyBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req VerifyBusinessRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	business, err := h.service.SetVerified(r.Context(), actorFrom(r), id.String(), *req.IsVerified)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	msg := "Business verification removed"
	if business.IsVerified {
		msg = "Business verified successfully"
	}
	httputil.WriteMessage(w, http.StatusOK, msg, business)
}

// ActivateBusiness handles PUT /api/v1/admin/businesses/{id}/activate
func (h *AdminHandler) ActivateBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ActivateBusinessRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	business, err := h.service.SetActive(r.Context(), actorFrom(r), id.String(), *req.IsActive)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	msg := "Business deactivated"
	if business.IsActive {
		msg = "Business activated"
	}
	httputil.WriteMessage(w, http.StatusOK, msg, business)
}

// DeleteBusiness handles DELETE /api/v1/admin/businesses/{id}
func (h *AdminHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBusiness(r.Context(), actorFrom(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Business deleted successfully", nil)
}

// RecalculateRating handles POST /api/v1/admin/businesses/{id}/recalculate
func (h *AdminHandler) RecalculateRating(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.service.Recalculate(r.Context(), actorFrom(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Rating recalculated", summary)
}

// Reindex handles POST /api/v1/admin/search/reindex
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.search.Reindex(r.Context(), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Search index rebuilt", map[string]int{"indexed": n})
}

// Users handles GET /api/v1/admin/users?role=
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Users(r.Context(), actorFrom(r), r.URL.Query().Get("role"),
		pagination.FromRequest(r, service.DefaultAdminLimit))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// UpdateUserRole handles PUT /api/v1/admin/users/{id}/role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actorFrom(r), id.String(), req.Role)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "User role updated", user)
}

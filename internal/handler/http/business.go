package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/httputil"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/validator"
)

// BusinessHandler handles HTTP requests for business endpoints.
type BusinessHandler struct {
	service *service.BusinessService
	logger  *slog.Logger
}

// NewBusinessHandler creates a new business HTTP handler.
func NewBusinessHandler(svc *service.BusinessService, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateBusinessRequest is the JSON request body for creating a business.
type CreateBusinessRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Category    string   `json:"category" validate:"required,oneof=restaurant shop service healthcare entertainment other"`
	Address     string   `json:"address" validate:"required,max=255"`
	City        string   `json:"city" validate:"required,max=100"`
	State       string   `json:"state" validate:"required,max=100"`
	ZipCode     string   `json:"zip_code" validate:"required,max=20"`
	Phone       string   `json:"phone" validate:"max=30"`
	Email       string   `json:"email" validate:"omitempty,email,max=255"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
	CoverImage  string   `json:"cover_image" validate:"omitempty,url"`
}

// UpdateBusinessRequest is the JSON request body for updating a business.
// Omitted fields are left unchanged.
type UpdateBusinessRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    *string  `json:"category" validate:"omitempty,oneof=restaurant shop service healthcare entertainment other"`
	Address     *string  `json:"address" validate:"omitempty,max=255"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	State       *string  `json:"state" validate:"omitempty,max=100"`
	ZipCode     *string  `json:"zip_code" validate:"omitempty,max=20"`
	Phone       *string  `json:"phone" validate:"omitempty,max=30"`
	Email       *string  `json:"email" validate:"omitempty,email,max=255"`
	Website     *string  `json:"website" validate:"omitempty,url"`
	Images      []string `json:"images" validate:"omitempty,max=10,dive,url"`
	CoverImage  *string  `json:"cover_image" validate:"omitempty,url"`
}

func (req CreateBusinessRequest) input() service.BusinessInput {
	return service.BusinessInput{
		Name:        &req.Name,
		Description: &req.Description,
		Category:    &req.Category,
		Address:     &req.Address,
		City:        &req.City,
		State:       &req.State,
		ZipCode:     &req.ZipCode,
		Phone:       &req.Phone,
		Email:       &req.Email,
		Website:     &req.Website,
		Images:      req.Images,
		CoverImage:  &req.CoverImage,
	}
}

func (req UpdateBusinessRequest) input() service.BusinessInput {
	return service.BusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Images:      req.Images,
		CoverImage:  req.CoverImage,
	}
}

// --- Handlers ---

// List handles GET /api/v1/businesses
// Query: category, city, state, search, sort (newest|rating|name), page, limit.
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), repository.BusinessFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		State:    q.Get("state"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     pagination.FromRequest(r, service.DefaultBusinessLimit),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

// Featured handles GET /api/v1/businesses/featured
func (h *BusinessHandler) Featured(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.service.Featured(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, businesses)
}

// Categories handles GET /api/v1/businesses/categories
func (h *BusinessHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, categories)
}

// Get handles GET /api/v1/businesses/{id}
// The id segment accepts either a UUID or a slug.
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, detail)
}

// Create handles POST /api/v1/businesses
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBusinessRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	business, err := h.service.Create(r.Context(), actorFrom(r), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "Business created successfully", business)
}

// Update handles PUT /api/v1/businesses/{id}
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateBusinessRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	business, err := h.service.Update(r.Context(), actorFrom(r), id.String(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Business updated successfully", business)
}

// Delete handles DELETE /api/v1/businesses/{id}
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actorFrom(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Business deleted successfully", nil)
}

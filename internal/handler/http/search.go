package http

import (
	"log/slog"
	"net/http"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/httputil"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/pagination"
)

// SearchHandler handles full-text business search.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: svc, logger: logger}
}

// Search handles GET /api/v1/search/businesses?q&category&city&page&limit
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.Search(r.Context(), service.SearchInput{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Page:     pagination.FromRequest(r, service.DefaultBusinessLimit),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, result)
}

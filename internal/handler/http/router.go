package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/health"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/middleware"
)

// catalogMaxAge is the browser cache lifetime of the featured and
// category lists.
const catalogMaxAge = 60 * time.Second

// Services groups the application services the router exposes.
type Services struct {
	Auth       *service.AuthService
	Businesses *service.BusinessService
	Reviews    *service.ReviewService
	Admin      *service.AdminService
	Search     *service.SearchService
}

// RouterConfig carries the cross-cutting pieces of the HTTP stack.
type RouterConfig struct {
	ServiceName string
	Tokens      middleware.TokenValidator
	Health      *health.Handler
	CORS        middleware.CORSConfig
	// AuthLimiter throttles the public auth routes. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Metrics and Gatherer back /metrics. Nil Metrics disables both.
	Metrics    *middleware.HTTPMetrics
	Gatherer   prometheus.Gatherer
	PprofCIDRs []string
}

// NewRouter creates a chi router with all directory routes registered.
func NewRouter(svc Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.Metrics != nil && cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	requireAuth := middleware.Auth(cfg.Tokens)
	optionalAuth := middleware.OptionalAuth(cfg.Tokens)
	userLogger := middleware.RequestLogger(logger)

	authHandler := NewAuthHandler(svc.Auth, logger)
	businessHandler := NewBusinessHandler(svc.Businesses, logger)
	reviewHandler := NewReviewHandler(svc.Reviews, logger)
	adminHandler := NewAdminHandler(svc.Admin, svc.Search, logger)
	searchHandler := NewSearchHandler(svc.Search, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Middleware)
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})
			r.With(requireAuth, userLogger).Get("/me", authHandler.Me)
		})

		// Business endpoints
		r.Route("/businesses", func(r chi.Router) {
			r.Get("/", businessHandler.List)
			r.With(middleware.CacheControl(catalogMaxAge)).Get("/featured", businessHandler.Featured)
			r.With(middleware.CacheControl(catalogMaxAge)).Get("/categories", businessHandler.Categories)
			r.Get("/{id}", businessHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, userLogger)
				r.Post("/", businessHandler.Create)
				r.Put("/{id}", businessHandler.Update)
				r.Delete("/{id}", businessHandler.Delete)
			})
		})

		// Review endpoints
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/business/{businessId}", reviewHandler.ListByBusiness)
			r.With(optionalAuth, userLogger).Get("/{id}", reviewHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, userLogger)
				r.Get("/user", reviewHandler.ListMine)
				r.Post("/", reviewHandler.Create)
				r.Put("/{id}", reviewHandler.Update)
				r.Delete("/{id}", reviewHandler.Delete)
			})
		})

		// Search endpoints
		r.Get("/search/businesses", searchHandler.Search)

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireRole(domain.RoleAdmin), userLogger)

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/reviews/pending", adminHandler.PendingReviews)
			r.Put("/reviews/{id}/approve", adminHandler.ApproveReview)
			r.Put("/reviews/{id}/reject", adminHandler.RejectReview)
			r.Get("/businesses", adminHandler.Businesses)
			r.Put("/businesses/{id}/verify", adminHandler.VerifyBusiness)
			r.Put("/businesses/{id}/activate", adminHandler.ActivateBusiness)
			r.Delete("/businesses/{id}", adminHandler.DeleteBusiness)
			r.Post("/businesses/{id}/recalculate", adminHandler.RecalculateRating)
			r.Post("/search/reindex", adminHandler.Reindex)
			r.Get("/users", adminHandler.Users)
			r.Put("/users/{id}/role", adminHandler.UpdateUserRole)
		})
	})

	return r
}

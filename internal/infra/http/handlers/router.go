package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/http/middleware"
)

type RouterConfig struct {
	CORSOrigins []string
	RateLimiter *middleware.IPRateLimiter
	AdminKey    string

	Leads     *LeadHandler
	Quiz      *QuizHandler
	Postbacks *PostbackHandler
	Clicks    *ClickHandler
	Health    *HealthHandler
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", "Authorization", middleware.AdminKeyHeader},
		MaxAge:         300,
	}))

	limit := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return cfg.RateLimiter.Middleware(h)
	}
	admin := middleware.RequireAdminKey(cfg.AdminKey)

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/leads", limit(cfg.Leads.CaptureLead))
		r.Method(http.MethodGet, "/leads/high-value", admin(http.HandlerFunc(cfg.Leads.ListHighValue)))
		r.Patch("/leads/{id}/enrichment", cfg.Leads.EnrichLead)
		r.Method(http.MethodPatch, "/leads/{id}/status", admin(http.HandlerFunc(cfg.Leads.UpdateStatus)))
		r.Method(http.MethodPost, "/submit-to-augusta", limit(cfg.Leads.SubmitToAugusta))

		r.Method(http.MethodPost, "/quiz-leads", limit(cfg.Quiz.Create))
		r.Method(http.MethodGet, "/quiz-leads", admin(http.HandlerFunc(cfg.Quiz.List)))
		r.Get("/quiz-leads/{id}", cfg.Quiz.Get)

		r.Get("/postback", cfg.Postbacks.Handle)
		r.Post("/postback", cfg.Postbacks.Handle)

		r.Get("/track-click", cfg.Clicks.Handle)
	})

	return r
}

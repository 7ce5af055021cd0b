package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/msomdec/campuscoders/internal/service"
)

// RouterConfig carries the services and settings the routes need.
type RouterConfig struct {
	Sessions     *service.SessionManager
	Entitlements *service.EntitlementResolver
	Admin        *service.AdminService
	Tokens       *service.SessionTokens

	CookieSecure    bool
	Production      bool
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	auth := NewAuthHandler(cfg.Sessions, cfg.Tokens, cfg.CookieSecure)
	subs := NewSubscriptionHandler(cfg.Sessions, cfg.Entitlements)
	admin := NewAdminHandler(cfg.Admin)

	requireSession := func(next http.Handler) http.Handler {
		return RequireSession(cfg.Sessions, cfg.Tokens, next)
	}
	optionalSession := func(next http.Handler) http.Handler {
		return OptionalSession(cfg.Sessions, cfg.Tokens, next)
	}
	requireAdmin := func(next http.Handler) http.Handler {
		return RequireAdmin(cfg.Sessions, next)
	}

	r := chi.NewRouter()
	r.Get("/healthz", HandleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(cfg.LoginRateLimit, cfg.LoginRateWindow))
				r.Post("/register", auth.HandleRegister)
				r.Post("/login", auth.HandleLogin)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/logout", auth.HandleLogout)
				r.Get("/me", auth.HandleMe)
				r.Patch("/me", auth.HandleUpdateMe)
			})
		})

		r.Get("/plans", subs.HandlePlans)

		r.Group(func(r chi.Router) {
			r.Use(optionalSession)
			r.Get("/subscription", subs.HandleCurrentPlan)
			r.Get("/entitlements/{tier}", subs.HandleEntitlement)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/subscription", subs.HandleSubscribe)
			r.Delete("/subscription", subs.HandleCancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession, requireAdmin)
			r.Get("/users", admin.HandleListUsers)
			r.Patch("/users/{id}/role", admin.HandleUpdateRole)
			r.Patch("/users/{id}/subscription", admin.HandleUpdateSubscription)
		})
	})

	return SecurityHeaders(cfg.Production, r)
}

// Package router sets up all HTTP routes and middleware chains for the
// inkpress API. It organizes routes into public, auth, and admin groups
// with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/session"
)

// loginRateLimit caps login attempts per client IP inside loginRateWindow.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies marks the CSRF cookie
// HTTPS-only; disable it only in development.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public API — read-only, no session required.
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", public.ListPosts)
		r.Get("/posts/{slug}", public.GetPost)
		r.Get("/categories", public.ListCategories)
		r.Get("/categories/{slug}", public.GetCategory)
		r.Get("/tags", public.ListTags)
		r.Get("/authors/{username}", public.GetAuthor)

		// Auth endpoints — CSRF-protected; login is rate-limited.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NewCSRF(secureCookies))

			loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)

			// 2FA — requires auth but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/verify", auth.TwoFAVerify)
			})

			r.With(middleware.RequireAuth, middleware.Require2FA).Get("/me", auth.Me)
		})

		// Admin API — authenticated, 2FA-verified, CSRF-protected.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NewCSRF(secureCookies))
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			// Posts
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.ListPosts)
				r.Post("/", admin.CreatePost)
				r.Get("/{id}", admin.GetPost)
				r.Put("/{id}", admin.UpdatePost)
				r.Delete("/{id}", admin.DeletePost)
				r.Post("/{id}/publish", admin.PublishPost)
				r.Post("/{id}/unpublish", admin.UnpublishPost)
			})

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.ListCategories)
				r.Post("/", admin.CreateCategory)
				r.Post("/reorder", admin.ReorderCategories)
				r.Put("/{id}", admin.UpdateCategory)
				r.Delete("/{id}", admin.DeleteCategory)
			})

			// Tags
			r.Route("/tags", func(r chi.Router) {
				r.Get("/", admin.ListTags)
				r.Post("/", admin.CreateTag)
				r.Put("/{id}", admin.UpdateTag)
				r.Delete("/{id}", admin.DeleteTag)
			})

			// Author management — admin only
			r.Route("/authors", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", admin.ListAuthors)
				r.Post("/", admin.CreateAuthor)
				r.Put("/{id}", admin.UpdateAuthor)
				r.Delete("/{id}", admin.DeleteAuthor)
				r.Post("/{id}/reset-2fa", admin.ResetAuthorTOTP)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

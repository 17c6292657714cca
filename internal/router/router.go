// Package router sets up the HTTP routes and middleware chains of the
// labsite API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"labsite/internal/handlers"
	"labsite/internal/middleware"
)

// New creates the chi router. formLimiter throttles the endpoints that
// call paid upstream services; it may be nil to disable throttling.
func New(blog *handlers.Blog, contact *handlers.Contact, formLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/blog", func(r chi.Router) {
			r.Get("/posts", blog.ListPosts)
			r.Get("/posts/{slug}", blog.GetPost)
			r.Get("/posts/{slug}/related", blog.RelatedPosts)
			r.Get("/search", blog.Search)
			r.Get("/recent", blog.Recent)
			r.Get("/popular", blog.Popular)
			r.Get("/categories", blog.Categories)
			r.Get("/tags", blog.Tags)
		})

		r.Group(func(r chi.Router) {
			if formLimiter != nil {
				r.Use(formLimiter.Middleware)
			}
			r.Post("/contact", contact.Submit)
			r.Post("/validate-email", contact.ValidateEmail)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

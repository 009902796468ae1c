package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/handlers/post"
	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// RegisterPostRoutes registers the /posts endpoints on the router
// Every endpoint requires authentication. The limiter charges each request to its
// client IP before auth and to the caller's user ID after it.
func RegisterPostRoutes(
	r chi.Router,
	service posts.Service,
	authMiddleware middleware.AuthMiddleware,
	limiter func(http.Handler) http.Handler,
) {
	createHandler := post.NewCreateHandler(service)
	listHandler := post.NewListHandler(service)
	updateHandler := post.NewUpdateHandler(service)

	r.Route("/posts", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Use(authMiddleware.RequireAuth)
		if limiter != nil {
			r.Use(limiter)
		}

		r.Post("/", createHandler.HandleCreate)
		r.Get("/", listHandler.HandleList)
		r.Patch("/{postId}", updateHandler.HandleUpdate)
	})
}

// RegisterHealthRoutes registers the unauthenticated liveness check
func RegisterHealthRoutes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/applyflow/applyflow-api/internal/api"
	"github.com/applyflow/applyflow-api/internal/api/middleware"
)

// newRouter assembles the HTTP routes. Everything under /api except the
// auth endpoints requires a valid access token.
func newRouter(
	authHandler *api.AuthHandler,
	profileHandler *api.ProfileHandler,
	applicationHandler *api.ApplicationHandler,
	authMiddleware *middleware.AuthMiddleware,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
				r.Post("/resume", profileHandler.UploadResume)
			})

			r.Route("/applications", func(r chi.Router) {
				r.Post("/", applicationHandler.SubmitApplication)
				r.Get("/", applicationHandler.ListApplications)
				r.Get("/{id}", applicationHandler.GetApplication)
			})
		})
	})

	return r
}

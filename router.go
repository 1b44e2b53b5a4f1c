package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. Adjust CORS for your frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000", "https://*.run.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(a.requestLogger)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", a.handleRegister)
		api.Post("/auth/login", a.handleLogin)

		api.Get("/regions", a.handleListRegions)
		api.Get("/regions/{name}", a.handleGetRegion)
		api.Get("/crops", a.handleListCrops)
		api.Get("/languages", a.handleListLanguages)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)
			pr.Put("/me", a.handleUpdateMe)

			pr.Post("/diagnose", a.handleDiagnose)
			pr.Post("/chat", a.handleChat)

			pr.Route("/cases", func(cr chi.Router) {
				cr.Get("/", a.handleListCases)
				cr.Delete("/", a.handleDeleteCases)
				cr.Get("/stats", a.handleCaseStats)
				cr.Get("/{id}", a.handleGetCase)
				cr.Put("/{id}", a.handleUpdateCase)
				cr.Post("/{id}/followup", a.handleFollowUp)
			})
		})
	})

	return r
}

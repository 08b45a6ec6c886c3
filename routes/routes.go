package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/prdhub/agentadmin/app"
	"github.com/prdhub/agentadmin/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.WriteTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		// Model dispatch (called by platform features)
		r.Post("/dispatch", handlers.DispatchHandler(deps))

		// Pool registry (admin only)
		r.Route("/pools", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/", handlers.ListPoolsHandler(deps))
			r.Post("/", handlers.CreatePoolHandler(deps))
			r.Get("/{id}", handlers.GetPoolHandler(deps))
			r.Put("/{id}", handlers.UpdatePoolHandler(deps))
			r.Delete("/{id}", handlers.DeletePoolHandler(deps))
			r.Post("/{id}/default", handlers.SetDefaultPoolHandler(deps))
			r.Post("/{id}/endpoints", handlers.AddEndpointHandler(deps))
			r.Delete("/{id}/endpoints/{endpointID}", handlers.RemoveEndpointHandler(deps))
			r.Get("/{id}/health", handlers.PoolHealthHandler(deps))
			r.Post("/{id}/health/reset", handlers.ResetPoolHealthHandler(deps))
			r.Post("/{id}/probe", handlers.ProbePoolHandler(deps))
			r.Get("/{id}/prediction", handlers.PredictPoolHandler(deps))
		})

		// App binding registry (admin only)
		r.Route("/bindings", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/", handlers.ListBindingsHandler(deps))
			r.Post("/", handlers.RegisterBindingHandler(deps))
			r.Get("/{code}", handlers.GetBindingHandler(deps))
			r.Put("/{code}", handlers.UpdateBindingHandler(deps))
			r.Delete("/{code}", handlers.DeleteBindingHandler(deps))
		})

		// Legacy fallback generation model (admin only)
		r.Route("/legacy-endpoint", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/", handlers.GetLegacyEndpointHandler(deps))
			r.Put("/", handlers.SetLegacyEndpointHandler(deps))
		})

		// Exchange log (admin only)
		r.Route("/exchanges", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/", handlers.ListExchangesHandler(deps))
			r.Get("/{id}", handlers.GetExchangeHandler(deps))
		})

		// Team management
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", handlers.ListTeamsHandler(deps))
			r.Post("/", handlers.CreateTeamHandler(deps))
			r.Post("/join", handlers.JoinTeamHandler(deps))
			r.Get("/{id}", handlers.GetTeamHandler(deps))
			r.Put("/{id}", handlers.RenameTeamHandler(deps))
			r.Delete("/{id}", handlers.DeleteTeamHandler(deps))
			r.Delete("/{id}/members/{userID}", handlers.RemoveTeamMemberHandler(deps))
		})

		// Template management
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", handlers.ListTemplatesHandler(deps))
			r.Post("/", handlers.CreateTemplateHandler(deps))
			r.Get("/{id}", handlers.GetTemplateHandler(deps))
			r.Put("/{id}", handlers.UpdateTemplateHandler(deps))
			r.Delete("/{id}", handlers.DeleteTemplateHandler(deps))
		})

		// Report workflow
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", handlers.ListReportsHandler(deps))
			r.Post("/", handlers.FileReportHandler(deps))
			r.Get("/{id}", handlers.GetReportHandler(deps))
			r.Post("/{id}/transition", handlers.TransitionReportHandler(deps))
			r.Delete("/{id}", handlers.DeleteReportHandler(deps))
		})

		// User management (admin only)
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireRole("admin"))
			r.Get("/", handlers.ListUsersHandler(deps))
			r.Post("/", handlers.CreateUserHandler(deps))
			r.Get("/{id}", handlers.GetUserHandler(deps))
			r.Put("/{id}", handlers.UpdateUserHandler(deps))
			r.Post("/{id}/disabled", handlers.SetUserDisabledHandler(deps))
			r.Delete("/{id}", handlers.DeleteUserHandler(deps))
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Route not found"}`))
	})

	return r
}

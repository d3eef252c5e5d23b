package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskwell/matrix-api/internal/api"
	apiMiddleware "github.com/taskwell/matrix-api/internal/api/middleware"
	"github.com/taskwell/matrix-api/internal/realtime"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	wsHandler := realtime.NewHandler(app.hub, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Health check endpoint (public)
		r.Get("/tasks/health", taskHandler.Health)

		// Protected routes. Fixed paths are registered before the {id}
		// routes so chi does not try to parse "daily" or "analytics" as a
		// task ID.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/daily", taskHandler.DailyTasks)
			r.Get("/tasks/monthly", taskHandler.MonthlyTasks)
			r.Get("/tasks/analytics", taskHandler.Analytics)

			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
			r.Post("/tasks/{id}/reanalyze", taskHandler.ReanalyzeTask)

			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}

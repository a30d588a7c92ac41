package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api"
	apiMiddleware "github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		&app.config.Auth,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	activityHandler := api.NewActivityHandler(app.activityService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.notificationService, app.logger)
	adminHandler := api.NewAdminHandler(app.reminderService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task workflow endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/created", taskHandler.ListCreated)
			r.Get("/tasks/assigned", taskHandler.ListAssigned)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}/status", taskHandler.ChangeStatus)
			r.Patch("/tasks/{id}/stage", taskHandler.ChangeStage)
			r.Post("/tasks/{id}/assign", taskHandler.Assign)
			r.Post("/tasks/{id}/transfer", taskHandler.Transfer)

			// History endpoints
			r.Post("/tasks/{id}/events", activityHandler.RecordEvent)
			r.Get("/tasks/{id}/history", activityHandler.TaskHistory)
			r.Get("/activity", activityHandler.MyActivity)

			// Notification inbox endpoints
			r.Get("/notifications", notificationHandler.List)
			r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
			r.Patch("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Patch("/notifications/{id}/read", notificationHandler.MarkRead)

			// Manual sweep triggers for managers and admins
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireManager)
				r.Post("/admin/sweeps/deadline", adminHandler.RunDeadlineSweep)
				r.Post("/admin/sweeps/overdue", adminHandler.RunOverdueSweep)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

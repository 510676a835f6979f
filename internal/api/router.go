package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/taskservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *taskservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Task collection.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.QuickAdd)
	r.Post("/tasks/reorder", h.ReorderTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	// Single-task gestures.
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	r.Post("/tasks/{id}/start", h.StartTask)
	r.Post("/tasks/{id}/archive", h.ArchiveTask)
	r.Post("/tasks/{id}/snooze", h.SnoozeTask)
	r.Put("/tasks/{id}/subtasks/{index}", h.ToggleSubtask)

	// Import/export.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// Settings and inbox.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/inbox", h.GetInbox)
	r.Delete("/inbox", h.ClearInbox)

	// Derived views.
	r.Get("/stats", h.GetStats)
	r.Get("/board", h.GetBoard)
	r.Get("/calendar", h.GetCalendar)

	// SSE change feed (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

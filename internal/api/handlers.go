package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/task"
	"github.com/starford/dagaz/internal/taskservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *taskservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *taskservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListTasks handles GET /tasks?filter=&sort=&q=.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := q.Get("filter")
	if filter == "" {
		filter = query.FilterAll
	}
	sortKey := q.Get("sort")
	if sortKey == "" {
		sortKey = query.SortOrder
	}

	tasks := h.svc.List(filter, sortKey, q.Get("q"), time.Now())
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// QuickAdd handles POST /tasks.
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req QuickAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.svc.AddQuick(r.Context(), req.Text)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTask handles GET /tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask handles PUT /tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask handles POST /tasks/{id}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	h.applyToggle(w, r, h.svc.ToggleComplete)
}

// StartTask handles POST /tasks/{id}/start, flipping doing/pending.
func (h *Handler) StartTask(w http.ResponseWriter, r *http.Request) {
	h.applyToggle(w, r, h.svc.ToggleDoing)
}

// ArchiveTask handles POST /tasks/{id}/archive.
func (h *Handler) ArchiveTask(w http.ResponseWriter, r *http.Request) {
	h.applyToggle(w, r, h.svc.ToggleArchive)
}

// SnoozeTask handles POST /tasks/{id}/snooze.
func (h *Handler) SnoozeTask(w http.ResponseWriter, r *http.Request) {
	h.applyToggle(w, r, h.svc.Snooze)
}

func (h *Handler) applyToggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (task.Task, error)) {
	t, err := op(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ToggleSubtask handles PUT /tasks/{id}/subtasks/{index}.
func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid subtask index"))
		return
	}
	var req SubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	t, err := h.svc.ToggleSubtask(r.Context(), chi.URLParam(r, "id"), index, req.Done)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ReorderTasks handles POST /tasks/reorder.
func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Column != "" && !validColumn(req.Column) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid column"))
		return
	}
	if err := h.svc.Reorder(r.Context(), req.IDs, req.Column); err != nil {
		slog.Error("reorder failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /export: the collection as a downloadable JSON file.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	data, err := h.svc.Export()
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	filename := fmt.Sprintf("dagaz-export-%d.json", time.Now().Unix())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// Import handles POST /import. The whole collection is replaced; a
// malformed payload is rejected with no state change.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	n, err := h.svc.Import(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON structure"))
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: n})
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings())
}

// UpdateSettings handles PUT /settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req task.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.UpdateSettings(r.Context(), req))
}

// GetInbox handles GET /inbox.
func (h *Handler) GetInbox(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, InboxResponse{Entries: h.svc.Inbox()})
}

// ClearInbox handles DELETE /inbox.
func (h *Handler) ClearInbox(w http.ResponseWriter, _ *http.Request) {
	h.svc.ClearInbox()
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ComputeStats(r.Context(), time.Now()))
}

// GetBoard handles GET /board.
func (h *Handler) GetBoard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BoardResponse{Columns: h.svc.Board()})
}

// GetCalendar handles GET /calendar?year=&month=. Defaults to the current
// month.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	days := h.svc.Calendar(year, time.Month(month))
	writeJSON(w, http.StatusOK, CalendarResponse{Year: year, Month: month, Days: days})
}

func (h *Handler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNoDueDate):
		writeJSON(w, http.StatusConflict, errorBody("task has no due date"))
	default:
		slog.Error("task operation failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func validColumn(c string) bool {
	return c == task.StatusPending || c == task.StatusDoing || c == task.StatusCompleted
}

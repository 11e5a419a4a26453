package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/service"
)

// TaskHandler handles the relational todo endpoints under /rest/todos/.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// List handles GET /rest/todos/.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, nil)
}

// Completed handles GET /rest/todos/completed/.
func (h *TaskHandler) Completed(w http.ResponseWriter, r *http.Request) {
	done := true
	h.list(w, r, &done)
}

// Pending handles GET /rest/todos/pending/.
func (h *TaskHandler) Pending(w http.ResponseWriter, r *http.Request) {
	done := false
	h.list(w, r, &done)
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request, completed *bool) {
	userID := auth.UserIDFromContext(r.Context())

	tasks, err := h.svc.List(r.Context(), userID, completed)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks, h.now()))
}

// Create handles POST /rest/todos/.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if !decodeSchema(w, r, dto.SchemaTaskFull, &req) {
		return
	}

	input := service.CreateTaskInput{
		Title:   *req.Title,
		DueDate: req.DueDate.Value,
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}

	task, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTaskResponse(task, h.now()))
}

// Get handles GET /rest/todos/{id}/.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, TodoIDParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task, h.now()))
}

// Replace handles PUT /rest/todos/{id}/. The title is required; other
// omitted fields keep their values.
func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, dto.SchemaTaskFull)
}

// Patch handles PATCH /rest/todos/{id}/.
func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, dto.SchemaTaskPatch)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request, schema string) {
	var req dto.TaskRequest
	if !decodeSchema(w, r, schema, &req) {
		return
	}

	task, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, TodoIDParam), req.Patch())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task, h.now()))
}

// Toggle handles POST /rest/todos/{id}/toggle_complete/.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	completed, err := h.svc.Toggle(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, TodoIDParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToggleResponse{Status: "toggled", Completed: completed})
}

// Delete handles DELETE /rest/todos/{id}/.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, TodoIDParam)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

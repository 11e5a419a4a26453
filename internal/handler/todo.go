package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

// TodoIDParam is the chi URL parameter naming a todo.
const TodoIDParam = "todoID"

// TodoHandler handles the document-store todo endpoints under /api/todos/.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/todos/.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	todos, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}

	writeJSON(w, http.StatusOK, todos)
}

// Create handles POST /api/todos/.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req dto.CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	todo, err := h.svc.Create(r.Context(), owner, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TodoCreatedResponse{
		Message: "Todo created successfully",
		ID:      todo.ID,
	})
}

// Get handles GET /api/todos/{id}/.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Get(r.Context(), owner, chi.URLParam(r, TodoIDParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Update handles PUT and PATCH /api/todos/{id}/. Both are partial updates.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	todo, err := h.svc.Update(r.Context(), owner, chi.URLParam(r, TodoIDParam), model.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Delete handles DELETE /api/todos/{id}/.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), owner, chi.URLParam(r, TodoIDParam)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// owner returns the caller resolved by the identity middleware.
func (h *TodoHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := auth.UserIDFromContext(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return "", false
	}
	return uid, true
}

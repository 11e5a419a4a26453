// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/service"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the root and fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello identifies the service.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "todomanager API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a plain JSON body into dst. An empty body decodes as {}.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodeSchema reads the body and validates it against a dto schema. It
// writes the 400 response itself and reports whether decoding succeeded.
func decodeSchema(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	err = dto.Decode(body, schema, dst)
	if err == nil {
		return true
	}

	var ve *dto.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Invalid request body",
			Code:   "VALIDATION_ERROR",
			Fields: ve.Fields,
		})
		return false
	}
	writeBodyError(w, err)
	return false
}

// writeBodyError reports an unreadable request body. Bodies cut off by
// MaxBodySize get 413, everything else 400.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
}

// inputMessage strips the generic prefix from a service input error.
func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// writeServiceError maps service errors shared by the todo resources.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrTextRequired):
		writeError(w, http.StatusBadRequest, "TEXT_REQUIRED", "Text is required")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, "NO_FIELDS", "No fields to update")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, service.ErrTodoNotFound), errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/middleware"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

// SessionManager starts and ends server-side sessions.
type SessionManager interface {
	Start(ctx context.Context, user *model.User) (string, error)
	End(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

// SessionHandler handles registration and cookie login for /rest/.
type SessionHandler struct {
	accounts *service.AccountService
	sessions SessionManager
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(accounts *service.AccountService, sessions SessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// Register handles POST /rest/auth/register/ and logs the new user in.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeSchema(w, r, dto.SchemaRegister, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAccountError(w, h.logger, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /rest/auth/login/.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.SessionLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAccountError(w, h.logger, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout handles POST /rest/auth/logout/. It succeeds without a session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.endSession(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *SessionHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	sessionID, err := h.sessions.Start(r.Context(), user)
	if err != nil {
		h.logger.Error("session_start_failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return false
	}
	middleware.SetSessionCookie(w, r, sessionID, int(h.sessions.TTL().Seconds()))
	return true
}

func (h *SessionHandler) endSession(w http.ResponseWriter, r *http.Request) bool {
	sessionID := auth.SessionIDFromContext(r.Context())
	if sessionID == "" {
		if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
			sessionID = cookie.Value
		}
	}
	if sessionID != "" {
		if err := h.sessions.End(r.Context(), sessionID); err != nil {
			h.logger.Error("session_end_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return false
		}
	}
	middleware.ClearSessionCookie(w, r)
	return true
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}
}

// accountMessage returns the user-facing text of a registration error.
func accountMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return "A user with that username already exists"
	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"
	case errors.Is(err, service.ErrInvalidLogin):
		return "Invalid username or password"
	case errors.Is(err, service.ErrPasswordInvalid):
		msg := strings.TrimPrefix(err.Error(), service.ErrPasswordInvalid.Error()+": ")
		return strings.ToUpper(msg[:1]) + msg[1:]
	case errors.Is(err, service.ErrInvalidInput):
		return inputMessage(err)
	}
	return ""
}

func writeAccountError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", accountMessage(err))
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", accountMessage(err))
	case errors.Is(err, service.ErrInvalidLogin):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", accountMessage(err))
	case errors.Is(err, service.ErrPasswordInvalid):
		writeError(w, http.StatusBadRequest, "INVALID_PASSWORD", accountMessage(err))
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", accountMessage(err))
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

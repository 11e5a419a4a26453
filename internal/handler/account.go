package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/identity"
)

// AccountHandler handles signup and sign-in for the document API.
type AccountHandler struct {
	provider identity.Provider
	verifier identity.Verifier
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler. verifier checks login
// tokens and may wrap provider with a cache; nil means provider itself.
func NewAccountHandler(provider identity.Provider, verifier identity.Verifier, logger *slog.Logger) *AccountHandler {
	if verifier == nil {
		verifier = provider
	}
	return &AccountHandler{
		provider: provider,
		verifier: verifier,
		logger:   logger,
	}
}

// Signup handles POST /api/signup/.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
		return
	}

	uid, err := h.provider.CreateAccount(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateAccount):
			writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", "Email already exists")
		case errors.Is(err, identity.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", identityMessage(err))
		default:
			h.logger.Error("signup_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	h.logger.Info("account_created", "user_id", uid)
	writeJSON(w, http.StatusCreated, dto.AccountResponse{
		Message: "User created successfully",
		UID:     uid,
	})
}

// Login handles POST /api/login/. It verifies an ID token and echoes its uid.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Firebase ID token is required")
		return
	}

	id, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredential) {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired ID token")
			return
		}
		h.logger.Error("login_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountResponse{
		Message: "User authenticated successfully",
		UID:     id.UserID,
	})
}

// Token handles POST /api/token/. Only providers that can sign users in
// server-side support it.
func (h *AccountHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Email and password are required")
		return
	}

	issued, err := identity.IssueToken(r.Context(), h.provider, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNotSupported):
			writeError(w, http.StatusNotImplemented, "NOT_SUPPORTED", "Sign in with the identity provider's client SDK")
		case errors.Is(err, identity.ErrInvalidCredential):
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, identity.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", identityMessage(err))
		default:
			h.logger.Error("token_issue_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		IDToken:   issued.Token,
		UID:       issued.UserID,
		ExpiresAt: issued.ExpiresAt,
	})
}

// identityMessage strips the generic prefix from an identity input error.
func identityMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), identity.ErrInvalidInput.Error()+": ")
	if msg == "" || msg == identity.ErrInvalidInput.Error() {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

package dto

import "time"

// SignupRequest is the body of POST /api/signup/.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login/.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

// AccountResponse acknowledges signup or login with the account uid.
type AccountResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
}

// TokenRequest is the body of POST /api/token/.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued ID token.
type TokenResponse struct {
	IDToken   string    `json:"idToken"`
	UID       string    `json:"uid"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterRequest is the body of POST /rest/auth/register/.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionLoginRequest is the body of POST /rest/auth/login/.
type SessionLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse describes the session user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

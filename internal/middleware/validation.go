package middleware

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
)

// MaxResourceIDLength bounds todo and task ids accepted in paths.
const MaxResourceIDLength = 128

// Validation errors.
var (
	ErrResourceIDEmpty   = errors.New("resource id is empty")
	ErrResourceIDTooLong = errors.New("resource id exceeds maximum length")
	ErrResourceIDInvalid = errors.New("resource id contains invalid characters")
)

// ValidateResourceID checks an id taken from a URL path. Any document id
// the stores can hold passes: non-empty, bounded, no path separator and
// no control characters.
func ValidateResourceID(id string) error {
	if id == "" {
		return ErrResourceIDEmpty
	}
	if len(id) > MaxResourceIDLength {
		return ErrResourceIDTooLong
	}
	if strings.ContainsRune(id, '/') || strings.ContainsFunc(id, unicode.IsControl) {
		return ErrResourceIDInvalid
	}
	return nil
}

// ResourceID rejects malformed values of the named chi URL parameter.
// A malformed id can never match a stored record, so the response is the
// same 404 the handler would give for a missing one.
func ResourceID(param, notFoundMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ValidateResourceID(chi.URLParam(r, param)); err != nil {
				writeError(w, http.StatusNotFound, "NOT_FOUND", notFoundMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

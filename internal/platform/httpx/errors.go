// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the authorization boundary and domain layer.
var (
	// ErrMissingCredential indicates the Authorization header was absent.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedCredential indicates the Authorization header could not be parsed.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrInvalidCredential covers expired, tampered, and unknown-subject tokens.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInsufficientPermission indicates the principal lacks the required permission.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidLogin indicates a failed username/password match.
	ErrInvalidLogin = errors.New("invalid login credentials")
	// ErrValidation indicates a malformed or invalid request body.
	ErrValidation = errors.New("validation failed")
	// ErrTooManyAttempts indicates the login throttle tripped.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Credential problems map to 401, permission problems to 403, missing
// entities to 404, and malformed bodies to 422. The reason behind a
// credential failure is never exposed to the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingCredential):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
	case errors.Is(err, ErrMalformedCredential):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format")
	case errors.Is(err, ErrInvalidCredential):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
	case errors.Is(err, ErrInvalidLogin):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, ErrInsufficientPermission):
		Problem(w, http.StatusForbidden, "Forbidden", "permission denied")
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrTooManyAttempts):
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "too many login attempts")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-shop/meridian/internal/shared"
)

// RespondError maps domain errors to HTTP responses. No raw storage or
// crypto error ever reaches the client; anything unrecognized becomes a
// generic 500.
func RespondError(w http.ResponseWriter, err error) {
	Fail(w, StatusFor(err), shared.UserSafeMessage(err))
}

// StatusFor resolves the HTTP status for a domain error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrOTPMismatch),
		errors.Is(err, shared.ErrExpired),
		errors.Is(err, shared.ErrAlreadyVerified):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shared.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

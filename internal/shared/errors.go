package shared

import "errors"

// Sentinel errors for the account core. Services wrap these with context
// via %w; handlers map them onto HTTP statuses in platform/httpx.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound indicates the account or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint was hit, e.g. a second
	// registration with the same normalized email.
	ErrDuplicate = errors.New("already exists")
	// ErrOTPMismatch indicates the supplied code differs from the stored one.
	ErrOTPMismatch = errors.New("invalid otp")
	// ErrExpired indicates an OTP past its validity window.
	ErrExpired = errors.New("expired")
	// ErrAlreadyVerified indicates a verify operation on a verified account.
	ErrAlreadyVerified = errors.New("account already verified")
	// ErrTokenExpired indicates a session token past its expiry. The client
	// remediation is re-login.
	ErrTokenExpired = errors.New("session expired")
	// ErrInvalidToken indicates a malformed or tampered session token.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTooManyRequests indicates a cooldown or rate limit was hit.
	ErrTooManyRequests = errors.New("too many requests")
)

// UserSafeMessage returns a message that can be shown to clients without
// leaking storage or crypto internals. Unknown errors collapse to a
// generic message; the original error stays in the server logs.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "Invalid input"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrDuplicate):
		return "Account already exists"
	case errors.Is(err, ErrOTPMismatch):
		return "Invalid OTP"
	case errors.Is(err, ErrExpired):
		return "Code has expired"
	case errors.Is(err, ErrAlreadyVerified):
		return "Account is already verified"
	case errors.Is(err, ErrTokenExpired):
		return "Session expired, please login again"
	case errors.Is(err, ErrInvalidToken):
		return "Not authorized, please login again"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many requests, try again later"
	default:
		return "Something went wrong"
	}
}

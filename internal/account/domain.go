// Package account implements the account lifecycle and credential
// management core: registration, email OTP verification, stateless login
// sessions and OTP-gated password reset.
package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OTPKind selects which of the two independent OTP pairs an operation
// works on.
type OTPKind string

const (
	// KindVerify gates first access to a fresh account.
	KindVerify OTPKind = "verify"
	// KindReset gates a password change.
	KindReset OTPKind = "reset"
)

// Account is the persisted credential record. An empty OTP string is the
// "no active code" sentinel; its expiry is the zero time then. The code
// and expiry of a pair are always written and cleared together.
type Account struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	IsVerified         bool      `json:"is_verified"`
	VerifyOTP          string    `json:"-"`
	VerifyOTPExpiresAt time.Time `json:"-"`
	ResetOTP           string    `json:"-"`
	ResetOTPExpiresAt  time.Time `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// OTP returns the stored code and expiry for the given kind.
func (a *Account) OTP(kind OTPKind) (string, time.Time) {
	if kind == KindReset {
		return a.ResetOTP, a.ResetOTPExpiresAt
	}
	return a.VerifyOTP, a.VerifyOTPExpiresAt
}

// NormalizeEmail trims and lowercases an email address. Every read and
// write of the store goes through this, which keeps email uniqueness
// case-insensitive with a plain unique index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

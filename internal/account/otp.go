package account

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/meridian-shop/meridian/internal/shared"
)

// OTPIssuer generates short-lived numeric codes. The verify TTL is
// deliberately lenient (it gates first access) while the reset TTL is
// tight (it gates a credential change); the asymmetry is part of the
// contract, not an accident.
type OTPIssuer struct {
	rand      io.Reader
	verifyTTL time.Duration
	resetTTL  time.Duration
}

// NewOTPIssuer constructs an issuer with the given TTL policy. A nil
// reader falls back to crypto/rand; tests inject a deterministic source.
func NewOTPIssuer(verifyTTL, resetTTL time.Duration, source io.Reader) *OTPIssuer {
	if source == nil {
		source = rand.Reader
	}
	return &OTPIssuer{rand: source, verifyTTL: verifyTTL, resetTTL: resetTTL}
}

// codeSpan covers "100000".."999999". The leading digit is never zero,
// so every code is exactly six characters by construction.
const (
	codeFloor = 100000
	codeSpan  = 900000
)

// GenerateCode returns a uniformly random six-digit code.
func (i *OTPIssuer) GenerateCode() (string, error) {
	n, err := rand.Int(i.rand, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("account: generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeFloor), nil
}

// TTL returns the validity window for the given kind.
func (i *OTPIssuer) TTL(kind OTPKind) time.Duration {
	if kind == KindReset {
		return i.resetTTL
	}
	return i.verifyTTL
}

// Issue generates a code with its expiry for the given kind.
func (i *OTPIssuer) Issue(kind OTPKind, now time.Time) (string, time.Time, error) {
	code, err := i.GenerateCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, now.Add(i.TTL(kind)), nil
}

// ValidateOTP checks a supplied code against stored state. It is a pure
// function: consuming the code after success is the caller's decision.
// An empty stored code means no code was ever issued (or it was already
// consumed), which is reported as not-found regardless of the input.
func ValidateOTP(stored string, expiresAt time.Time, supplied string, now time.Time) error {
	if stored == "" {
		return fmt.Errorf("account: no active otp: %w", shared.ErrNotFound)
	}
	if supplied != stored {
		return shared.ErrOTPMismatch
	}
	if now.After(expiresAt) {
		return fmt.Errorf("account: otp: %w", shared.ErrExpired)
	}
	return nil
}

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-shop/meridian/internal/mailer"
	"github.com/meridian-shop/meridian/internal/observability"
	"github.com/meridian-shop/meridian/internal/shared"
)

// Dispatcher hands a message to the delivery pipeline. The production
// implementation enqueues onto the background worker, so a slow mail
// transport never stalls an HTTP response.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg mailer.Message) error
}

// Service wraps the account lifecycle business rules.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	otp      *OTPIssuer
	tokens   *TokenIssuer
	mail     Dispatcher
	cooldown *CooldownStore
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewService constructs a Service. cooldown and metrics may be nil.
func NewService(logger *slog.Logger, repo Repository, otp *OTPIssuer, tokens *TokenIssuer, mail Dispatcher, cooldown *CooldownStore, metrics *observability.Metrics) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		otp:      otp,
		tokens:   tokens,
		mail:     mail,
		cooldown: cooldown,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Register creates an unverified account, issues its first verification
// code and dispatches the welcome and verification emails. Dispatch
// failures are logged but do not fail the registration: delivery is
// retried by the worker queue, and a user who never got the code can
// request a resend.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("account: hash password: %w", err)
	}

	acct, err := s.repo.Create(ctx, name, email, string(hash))
	if err != nil {
		s.observe("register", err)
		return nil, err
	}

	code, expiresAt, err := s.otp.Issue(KindVerify, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetOTP(ctx, acct.ID, KindVerify, code, expiresAt); err != nil {
		return nil, err
	}

	s.dispatch(ctx, mailer.Welcome(acct.Email, acct.Name))
	s.dispatch(ctx, mailer.VerifyCode(acct.Email, acct.Name, code))

	s.observe("register", nil)
	return acct, nil
}

// Login checks credentials and mints a session token. A missing account
// and a wrong password collapse into the same error so the endpoint does
// not reveal which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.observe("login", shared.ErrInvalidCredentials)
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.observe("login", shared.ErrInvalidCredentials)
		return nil, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(acct.ID)
	if err != nil {
		return nil, "", err
	}
	s.observe("login", nil)
	return acct, token, nil
}

// SendVerifyOTP issues a fresh verification code and emails it. Already
// verified accounts short-circuit instead of re-issuing codes.
func (s *Service) SendVerifyOTP(ctx context.Context, id uuid.UUID) error {
	acct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if acct.IsVerified {
		return shared.ErrAlreadyVerified
	}
	if err := s.acquireCooldown(ctx, "verify:"+acct.ID.String()); err != nil {
		return err
	}

	code, expiresAt, err := s.otp.Issue(KindVerify, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, acct.ID, KindVerify, code, expiresAt); err != nil {
		return err
	}

	s.dispatch(ctx, mailer.VerifyCode(acct.Email, acct.Name, code))
	s.observe("send_verify_otp", nil)
	return nil
}

// VerifyAccount validates the code, marks the account verified and mints
// a session token. The code is consumed on success: SetVerified clears
// the pair, so a replay of the same code fails not-found.
func (s *Service) VerifyAccount(ctx context.Context, email, code string) (*Account, string, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if acct.IsVerified {
		return nil, "", shared.ErrAlreadyVerified
	}

	stored, expiresAt := acct.OTP(KindVerify)
	if err := ValidateOTP(stored, expiresAt, code, s.now()); err != nil {
		s.observe("verify_account", err)
		return nil, "", err
	}
	if err := s.repo.SetVerified(ctx, acct.ID); err != nil {
		return nil, "", err
	}
	acct.IsVerified = true
	acct.VerifyOTP = ""
	acct.VerifyOTPExpiresAt = time.Time{}

	token, err := s.tokens.Mint(acct.ID)
	if err != nil {
		return nil, "", err
	}
	s.observe("verify_account", nil)
	return acct, token, nil
}

// SendResetOTP issues a password reset code and emails it. Verification
// is not required first: an unverified account may still reset its
// password, matching the storefront's historical behavior.
func (s *Service) SendResetOTP(ctx context.Context, email string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.acquireCooldown(ctx, "reset:"+acct.ID.String()); err != nil {
		return err
	}

	code, expiresAt, err := s.otp.Issue(KindReset, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, acct.ID, KindReset, code, expiresAt); err != nil {
		return err
	}

	s.dispatch(ctx, mailer.ResetCode(acct.Email, acct.Name, code))
	s.observe("send_reset_otp", nil)
	return nil
}

// VerifyResetOTP checks a reset code without consuming it. This is the
// first phase of the two-phase reset flow: the client confirms the code
// before the user types a new password, and ResetPassword re-validates
// and consumes it. Until then a still-valid code verifies repeatedly.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	stored, expiresAt := acct.OTP(KindReset)
	if err := ValidateOTP(stored, expiresAt, code, s.now()); err != nil {
		s.observe("verify_reset_otp", err)
		return err
	}
	s.observe("verify_reset_otp", nil)
	return nil
}

// ResetPassword re-validates the reset code, then overwrites the
// password hash and consumes the code in one atomic write.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	stored, expiresAt := acct.OTP(KindReset)
	if err := ValidateOTP(stored, expiresAt, code, s.now()); err != nil {
		s.observe("reset_password", err)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("account: hash password: %w", err)
	}
	if err := s.repo.ResetCredentials(ctx, acct.ID, string(hash)); err != nil {
		return err
	}

	s.dispatch(ctx, mailer.PasswordChanged(acct.Email, acct.Name))
	s.observe("reset_password", nil)
	return nil
}

// Profile returns the account for the given ID.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile changes non-credential fields.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*Account, error) {
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// DeleteAccount removes the record after a password re-entry. Session
// tokens minted for the account die on the guard's next existence check.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	acct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.observe("delete_account", nil)
	return nil
}

func (s *Service) acquireCooldown(ctx context.Context, key string) error {
	ok, err := s.cooldown.Acquire(ctx, key)
	if err != nil {
		s.logger.Warn("otp cooldown check failed", slog.Any("error", err))
		return nil
	}
	if !ok {
		return shared.ErrTooManyRequests
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, msg mailer.Message) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Dispatch(ctx, msg); err != nil {
		s.logger.Warn("mail dispatch failed",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.Any("error", err))
	}
}

func (s *Service) observe(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrOTPMismatch):
		outcome = "otp_mismatch"
	case errors.Is(err, shared.ErrExpired):
		outcome = "otp_expired"
	case errors.Is(err, shared.ErrInvalidCredentials):
		outcome = "bad_credentials"
	case errors.Is(err, shared.ErrDuplicate):
		outcome = "duplicate"
	default:
		outcome = "error"
	}
	s.metrics.ObserveAuthOp(operation, outcome)
}

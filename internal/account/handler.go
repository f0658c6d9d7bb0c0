package account

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/meridian-shop/meridian/internal/platform/httpx"
	"github.com/meridian-shop/meridian/internal/shared"
)

// Handler wires the JSON endpoints for the account lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

// decode parses and validates the request body. Failures map to 400
// before any store access happens.
func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrValidation, firstFieldError(err))
	}
	return nil
}

func firstFieldError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Sprintf("field %s is invalid", errs[0].Field())
	}
	return "invalid input"
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	acct, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("register failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.OK(w, http.StatusCreated, "Registered", RegisterResponse{
		UserID: acct.ID,
		Email:  acct.Email,
		Name:   acct.Name,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	_, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.guard.SetSessionCookie(w, token, h.service.tokens.TTL())
	httpx.OK(w, http.StatusOK, "Logged in", TokenResponse{Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens have nothing to revoke server-side; clearing the
	// cookie is the whole logout.
	h.guard.ClearSessionCookie(w)
	httpx.OK(w, http.StatusOK, "Logged out", nil)
}

func (h *Handler) SendVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req SendVerifyOTPRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.SendVerifyOTP(r.Context(), req.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Verification code sent", nil)
}

func (h *Handler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req VerifyAccountRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	_, token, err := h.service.VerifyAccount(r.Context(), req.Email, req.OTP)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.guard.SetSessionCookie(w, token, h.service.tokens.TTL())
	httpx.OK(w, http.StatusOK, "Account verified", TokenResponse{Token: token})
}

func (h *Handler) SendResetOTP(w http.ResponseWriter, r *http.Request) {
	var req SendResetOTPRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.SendResetOTP(r.Context(), req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Reset code sent", nil)
}

func (h *Handler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyResetOTPRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.VerifyResetOTP(r.Context(), req.Email, req.OTP); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Code valid", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Password changed", nil)
}

func (h *Handler) IsAuth(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, "", nil)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	acct := AccountFromContext(r.Context())
	httpx.OK(w, http.StatusOK, "", toProfile(acct))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	acct := AccountFromContext(r.Context())
	updated, err := h.service.UpdateProfile(r.Context(), acct.ID, req.Name)
	if err != nil {
		h.logger.Error("update profile failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Profile updated", toProfile(updated))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	acct := AccountFromContext(r.Context())
	if err := h.service.DeleteAccount(r.Context(), acct.ID, req.Password); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.guard.ClearSessionCookie(w)
	httpx.OK(w, http.StatusOK, "Account deleted", nil)
}

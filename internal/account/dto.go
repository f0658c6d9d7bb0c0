package account

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResponse struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendVerifyOTPRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type VerifyAccountRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type SendResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// ProfileResponse is the client-visible projection of an Account.
type ProfileResponse struct {
	UserID     uuid.UUID `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isAccountVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toProfile(acct *Account) ProfileResponse {
	return ProfileResponse{
		UserID:     acct.ID,
		Name:       acct.Name,
		Email:      acct.Email,
		IsVerified: acct.IsVerified,
		CreatedAt:  acct.CreatedAt,
	}
}

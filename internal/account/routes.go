package account

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountAuthRoutes registers the credential endpoints. The per-IP limit
// on this group is the chosen answer to brute-force login and OTP
// guessing; there is no per-account lockout.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/send-verify-otp", h.SendVerifyOTP)
		r.Post("/verify-account", h.VerifyAccount)
		r.Post("/send-reset-otp", h.SendResetOTP)
		r.Post("/verify-reset-otp", h.VerifyResetOTP)
		r.Post("/reset-password", h.ResetPassword)
	})

	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth)
		r.Get("/is-auth", h.IsAuth)
	})
}

// MountUserRoutes registers the guarded profile endpoints.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Use(h.guard.RequireAuth)

	r.Get("/profile", h.Profile)
	r.Put("/profile", h.UpdateProfile)
	r.Delete("/account", h.DeleteAccount)
}

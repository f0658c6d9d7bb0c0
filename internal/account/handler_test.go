package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-shop/meridian/internal/platform/httpx"
)

type handlerFixture struct {
	router *chi.Mux
	repo   *memRepo
	disp   *captureDispatcher
	svc    *Service
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	repo := newMemRepo()
	disp := &captureDispatcher{}
	otp := NewOTPIssuer(24*time.Hour, 15*time.Minute, mathrand.New(mathrand.NewSource(11)))
	tokens := NewTokenIssuer("test-secret", 7*24*time.Hour)
	svc := NewService(slog.Default(), repo, otp, tokens, disp, nil, nil)
	guard := NewGuard(slog.Default(), tokens, repo, false)
	h := NewHandler(slog.Default(), svc, guard)

	r := chi.NewRouter()
	r.Route("/api/auth", h.MountAuthRoutes)
	r.Route("/api/user", h.MountUserRoutes)
	return &handlerFixture{router: r, repo: repo, disp: disp, svc: svc}
}

func (f *handlerFixture) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, path, body, cookies...)
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func (f *handlerFixture) register(t *testing.T) {
	t.Helper()
	rec := f.post(t, "/api/auth/register", RegisterRequest{
		Name:     "Ann",
		Email:    "a@b.com",
		Password: "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/api/auth/register", RegisterRequest{
		Name:     "Ann",
		Email:    "a@b.com",
		Password: "Passw0rd!",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	data := env.Data.(map[string]any)
	assert.Equal(t, "a@b.com", data["email"])
	assert.Equal(t, "Ann", data["name"])
	assert.NotEmpty(t, data["userId"])
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec := f.post(t, "/api/auth/register", RegisterRequest{
		Name:     "Ann Again",
		Email:    "A@B.com",
		Password: "Passw0rd!",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestRegisterEndpointValidation(t *testing.T) {
	f := newHandlerFixture(t)

	cases := []struct {
		name string
		body RegisterRequest
	}{
		{"bad email", RegisterRequest{Name: "Ann", Email: "not-an-email", Password: "Passw0rd!"}},
		{"short password", RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "short"}},
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "Passw0rd!"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.post(t, "/api/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginEndpointSetsCookie(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec := f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "Passw0rd!"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	assert.NotEmpty(t, env.Data.(map[string]any)["token"])

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec := f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPw := decodeEnvelope(t, rec).Message

	rec = f.post(t, "/api/auth/login", LoginRequest{Email: "nobody@b.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPw, decodeEnvelope(t, rec).Message)
}

func TestVerifyAccountEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)
	code := storedAccount(t, f.repo, "a@b.com").VerifyOTP

	rec := f.post(t, "/api/auth/verify-account", VerifyAccountRequest{Email: "a@b.com", OTP: wrongCode(code)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post(t, "/api/auth/verify-account", VerifyAccountRequest{Email: "a@b.com", OTP: code})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))
	assert.True(t, storedAccount(t, f.repo, "a@b.com").IsVerified)
}

func TestResetPasswordEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec := f.post(t, "/api/auth/send-reset-otp", SendResetOTPRequest{Email: "a@b.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := storedAccount(t, f.repo, "a@b.com").ResetOTP
	require.Len(t, code, 6)

	rec = f.post(t, "/api/auth/verify-reset-otp", VerifyResetOTPRequest{Email: "a@b.com", OTP: code})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/auth/reset-password", ResetPasswordRequest{
		Email:       "a@b.com",
		OTP:         code,
		NewPassword: "NewPassw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "NewPassw0rd"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsAuthEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)

	rec := f.do(t, http.MethodGet, "/api/auth/is-auth", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login := f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusOK, login.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/is-auth", nil, sessionCookie(login))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutEndpointClearsCookie(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestProfileEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)
	login := f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusOK, login.Code)
	session := sessionCookie(login)

	rec := f.do(t, http.MethodGet, "/api/user/profile", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "Ann", data["name"])
	assert.Equal(t, false, data["isAccountVerified"])

	rec = f.do(t, http.MethodPut, "/api/user/profile", UpdateProfileRequest{Name: "Ann Example"}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "Ann Example", data["name"])
}

func TestDeleteAccountEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t)
	login := f.post(t, "/api/auth/login", LoginRequest{Email: "a@b.com", Password: "Passw0rd!"})
	require.Equal(t, http.StatusOK, login.Code)
	session := sessionCookie(login)

	rec := f.do(t, http.MethodDelete, "/api/user/account", DeleteAccountRequest{Password: "wrong-password"}, session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/user/account", DeleteAccountRequest{Password: "Passw0rd!"}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)

	// The session dies with the account.
	rec = f.do(t, http.MethodGet, "/api/user/profile", nil, session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	f := newHandlerFixture(t)

	var last int
	for i := 0; i < 11; i++ {
		rec := f.post(t, "/api/auth/login", LoginRequest{
			Email:    fmt.Sprintf("u%d@b.com", i),
			Password: "Passw0rd!",
		})
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRejectsUnknownFields(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"email":"a@b.com","password":"Passw0rd!","admin":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

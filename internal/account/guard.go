package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meridian-shop/meridian/internal/platform/httpx"
	"github.com/meridian-shop/meridian/internal/shared"
)

type ctxKey struct{}

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

// Guard authenticates requests and resolves the token to an account.
// The per-request store lookup costs one read but makes tokens of
// deleted accounts die immediately, which a stateless scheme cannot
// otherwise do.
type Guard struct {
	logger     *slog.Logger
	tokens     *TokenIssuer
	repo       Repository
	production bool
}

// NewGuard constructs a Guard.
func NewGuard(logger *slog.Logger, tokens *TokenIssuer, repo Repository, production bool) *Guard {
	return &Guard{logger: logger, tokens: tokens, repo: repo, production: production}
}

// RequireAuth rejects requests without a valid session credential and
// puts the resolved account on the context.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}

		id, err := g.tokens.Parse(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		acct, err := g.repo.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// The account was deleted after the token was issued.
				g.ClearSessionCookie(w)
				httpx.Fail(w, http.StatusUnauthorized, "Account no longer exists")
				return
			}
			g.logger.Error("guard account lookup", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithAccount(r.Context(), acct)))
	})
}

// tokenFromRequest extracts the raw token, cookie first, then the
// Authorization header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// SetSessionCookie writes the session cookie. SameSite=None is required
// in production because the storefront UI is served from another origin.
func (g *Guard) SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	sameSite := http.SameSiteLaxMode
	if g.production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.production,
		SameSite: sameSite,
	})
}

// ClearSessionCookie expires the session cookie.
func (g *Guard) ClearSessionCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if g.production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.production,
		SameSite: sameSite,
	})
}

// ContextWithAccount attaches the authenticated account to the context.
func ContextWithAccount(ctx context.Context, acct *Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, acct)
}

// AccountFromContext returns the authenticated account, or nil outside a
// guarded route.
func AccountFromContext(ctx context.Context) *Account {
	acct, _ := ctx.Value(ctxKey{}).(*Account)
	return acct
}

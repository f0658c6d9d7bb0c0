package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meridian-shop/meridian/internal/shared"
)

// TokenIssuer mints and verifies stateless session credentials. There is
// no server-side session record: a token is valid until its expiry, and
// the guard's per-request account lookup is the only early invalidation.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer. The secret comes from process
// configuration and is shared by every instance behind a load balancer.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window for minted tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Mint signs a session token for the given account.
func (t *TokenIssuer) Mint(accountID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("account: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the account ID. Expiry
// and tampering are distinct failures because the client remediation
// differs: re-login versus a corrupted or forged token.
func (t *TokenIssuer) Parse(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, shared.ErrTokenExpired
		}
		return uuid.Nil, shared.ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, shared.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, shared.ErrInvalidToken
	}
	return id, nil
}

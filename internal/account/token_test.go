package account

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-shop/meridian/internal/shared"
)

func TestTokenMintAndParse(t *testing.T) {
	issuer := NewTokenIssuer("super-secret", 7*24*time.Hour)
	id := uuid.New()

	token, err := issuer.Mint(id)
	require.NoError(t, err)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenExpiredIsDistinctFromInvalid(t *testing.T) {
	issuer := NewTokenIssuer("super-secret", -time.Second)

	token, err := issuer.Mint(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
	assert.NotErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	minter := NewTokenIssuer("right-secret", time.Hour)
	verifier := NewTokenIssuer("wrong-secret", time.Hour)

	token, err := minter.Mint(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	_, err := issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenNonUUIDSubjectRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	// Correctly signed but with a subject that is not an account ID.
	now := time.Now()
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-an-account-id",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := forged.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Parse(signed)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier(t *testing.T) {
	verifier, err := NewJWTVerifier("test-secret")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("ValidToken", func(t *testing.T) {
		token, err := verifier.SignToken("user-1", "admin@example.com", time.Hour)
		require.NoError(t, err)

		account, err := verifier.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", account.ID)
		assert.Equal(t, "admin@example.com", account.Email)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := verifier.SignToken("user-1", "admin@example.com", -time.Hour)
		require.NoError(t, err)

		_, err = verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewJWTVerifier("other-secret")
		require.NoError(t, err)
		token, err := other.SignToken("user-1", "", time.Hour)
		require.NoError(t, err)

		_, err = verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongAudience", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		token, err := verifier.SignToken("", "", time.Hour)
		require.NoError(t, err)

		_, err = verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := verifier.VerifyToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestNewProvider(t *testing.T) {
	base := Config{BaseURL: "https://project.supabase.co", ServiceKey: "k", JWTSecret: "s"}

	remote, err := NewProvider(base, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Client{}, remote)

	jwtCfg := base
	jwtCfg.VerifyMode = VerifyModeJWT
	local, err := NewProvider(jwtCfg, nil, nil)
	require.NoError(t, err)
	_, isClient := local.(*Client)
	assert.False(t, isClient)

	badCfg := base
	badCfg.VerifyMode = "ldap"
	_, err = NewProvider(badCfg, nil, nil)
	assert.Error(t, err)
}

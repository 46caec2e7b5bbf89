package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience is the audience GoTrue stamps on user access tokens
const DefaultAudience = "authenticated"

// Claims are the access-token claims issued by GoTrue
type Claims struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates access tokens locally with the project's JWT secret
type JWTVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
}

// NewJWTVerifier creates a verifier for HS256 tokens signed with secret
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT secret is required", ErrMisconfigured)
	}
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: DefaultAudience,
		leeway:   30 * time.Second,
	}, nil
}

// VerifyToken implements TokenVerifier
func (v *JWTVerifier) VerifyToken(ctx context.Context, tokenString string) (*models.Account, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &models.Account{
		ID:    claims.Subject,
		Email: claims.Email,
		Phone: claims.Phone,
		Role:  claims.Role,
	}, nil
}

// SignToken issues a token accepted by the verifier. Used by tests and local tooling.
func (v *JWTVerifier) SignToken(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  DefaultAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{v.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

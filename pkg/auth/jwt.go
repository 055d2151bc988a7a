package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "crud-microservices/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrOfflineOnly   = errors.New("only available in offline mode")
	ErrMissingSecret = errors.New("JWT secret is required")
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

func invalidToken(err error) error {
	msg := "Invalid token"
	if errors.Is(err, jwt.ErrTokenExpired) {
		msg = "Token has expired"
	}
	return apperrors.NewAuthenticationError(msg).WithCode(apperrors.CodeInvalidToken).WithCause(err)
}

// SharedSecretVerifier verifies HS256 tokens minted by the offline identity provider.
type SharedSecretVerifier struct {
	secret []byte
}

// NewSharedSecretVerifier refuses to build outside offline mode so a
// deployment can never be downgraded to symmetric signatures.
func NewSharedSecretVerifier(secret string, offline bool) (*SharedSecretVerifier, error) {
	if !offline {
		return nil, ErrOfflineOnly
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &SharedSecretVerifier{secret: []byte(secret)}, nil
}

// Verify validates signature, algorithm and expiry.
func (v *SharedSecretVerifier) Verify(_ context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, invalidToken(err)
	}
	if claims.Subject == "" {
		return nil, invalidToken(jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}

// JWTGenerator mints HS256 tokens for offline sign-in.
type JWTGenerator struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTGenerator creates a generator. Like the verifier it is offline only.
func NewJWTGenerator(secret string, expiry time.Duration, offline bool) (*JWTGenerator, error) {
	if !offline {
		return nil, ErrOfflineOnly
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTGenerator{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// GenerateToken mints a token carrying the caller's claims.
func (g *JWTGenerator) GenerateToken(identity CallerIdentity) (string, error) {
	now := g.now()
	username := identity.Username
	if username == "" {
		username = identity.Email
	}
	claims := &Claims{
		Email:    identity.Email,
		Name:     identity.Name,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiry)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

package auth

import (
	"context"

	apperrors "crud-microservices/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// CallerIdentity is the authenticated principal of one request.
type CallerIdentity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Claims are the token claims the service understands.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"cognito:username,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

// Identity maps claims onto a CallerIdentity.
func (c *Claims) Identity() (*CallerIdentity, error) {
	return NewIdentity(c.Subject, c.Email, c.Name, c.Username)
}

// NewIdentity builds an identity from raw claim values. The username falls
// back to the email when the provider did not supply one.
func NewIdentity(sub, email, name, username string) (*CallerIdentity, error) {
	if sub == "" {
		return nil, apperrors.NewAuthenticationError("Invalid token: missing subject").WithCode(apperrors.CodeInvalidToken)
	}
	if username == "" {
		username = email
	}
	return &CallerIdentity{UserID: sub, Email: email, Name: name, Username: username}, nil
}

type contextKey string

const callerKey contextKey = "caller"

// WithCaller stores the caller on ctx.
func WithCaller(ctx context.Context, caller *CallerIdentity) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (*CallerIdentity, bool) {
	caller, ok := ctx.Value(callerKey).(*CallerIdentity)
	return caller, ok && caller != nil
}

// RequireCaller returns the caller or a 401.
func RequireCaller(ctx context.Context) (*CallerIdentity, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return nil, apperrors.NewAuthenticationError("Unauthorized").WithCode(apperrors.CodeAuthRequired)
	}
	return caller, nil
}

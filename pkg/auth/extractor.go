package auth

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "crud-microservices/pkg/errors"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
)

// Extractor resolves the caller of a request.
type Extractor interface {
	Extract(r *http.Request) (*CallerIdentity, error)
}

func authRequired() error {
	return apperrors.NewAuthenticationError("Unauthorized").WithCode(apperrors.CodeAuthRequired)
}

// AuthorizerExtractor reads the claims an API Gateway authorizer attached to
// the proxied request. HTTP API (v2) JWT claims and Lambda authorizer context
// are understood, as are REST API (v1) authorizer claims.
type AuthorizerExtractor struct{}

// Extract implements Extractor.
func (AuthorizerExtractor) Extract(r *http.Request) (*CallerIdentity, error) {
	if proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context()); ok && proxyCtx.Authorizer != nil {
		if jwtAuth := proxyCtx.Authorizer.JWT; jwtAuth != nil && len(jwtAuth.Claims) > 0 {
			c := jwtAuth.Claims
			return NewIdentity(c["sub"], c["email"], c["name"], c["cognito:username"])
		}
		if lambdaCtx := proxyCtx.Authorizer.Lambda; lambdaCtx != nil {
			return identityFromMap(lambdaCtx)
		}
	}

	if proxyCtx, ok := core.GetAPIGatewayContextFromContext(r.Context()); ok && proxyCtx.Authorizer != nil {
		if claims, ok := proxyCtx.Authorizer["claims"].(map[string]interface{}); ok {
			return identityFromMap(claims)
		}
		return identityFromMap(proxyCtx.Authorizer)
	}

	return nil, authRequired()
}

func identityFromMap(m map[string]interface{}) (*CallerIdentity, error) {
	str := func(k string) string {
		if v, ok := m[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	if str("sub") == "" {
		return nil, authRequired()
	}
	return NewIdentity(str("sub"), str("email"), str("name"), str("cognito:username"))
}

// BearerExtractor verifies the Authorization header with a TokenVerifier.
type BearerExtractor struct {
	Verifier TokenVerifier
}

// Extract implements Extractor.
func (e BearerExtractor) Extract(r *http.Request) (*CallerIdentity, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, authRequired()
	}
	claims, err := e.Verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return claims.Identity()
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// OfflineFallbackExtractor answers with a fixed identity when the wrapped
// extractor finds no credential at all. A credential that is present but
// invalid is still rejected. Only constructed in offline mode.
type OfflineFallbackExtractor struct {
	next     Extractor
	identity CallerIdentity
}

// NewOfflineFallbackExtractor wraps next. It fails unless offline is true.
func NewOfflineFallbackExtractor(next Extractor, userID string, offline bool) (*OfflineFallbackExtractor, error) {
	if !offline {
		return nil, ErrOfflineOnly
	}
	if userID == "" {
		userID = "test-user-id"
	}
	return &OfflineFallbackExtractor{
		next: next,
		identity: CallerIdentity{
			UserID:   userID,
			Email:    userID + "@localhost",
			Name:     "Offline User",
			Username: userID,
		},
	}, nil
}

// Extract implements Extractor.
func (e *OfflineFallbackExtractor) Extract(r *http.Request) (*CallerIdentity, error) {
	caller, err := e.next.Extract(r)
	if err == nil {
		return caller, nil
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.CodeAuthRequired {
		id := e.identity
		return &id, nil
	}
	return nil, err
}

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "crud-microservices/pkg/errors"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnknownKey   = errors.New("signing key not found")
	ErrMissingKeyID = errors.New("token header has no kid")

	// ErrJWKSUnavailable means the key set could not be fetched or decoded.
	ErrJWKSUnavailable = errors.New("jwks unavailable")
)

// KeyCache stores verification keys by kid.
type KeyCache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// JWKSConfig configures a JWKSVerifier.
type JWKSConfig struct {
	Region     string
	UserPoolID string
	// JWKSURL overrides the Cognito well-known URL.
	JWKSURL string
	// Issuer overrides the Cognito issuer.
	Issuer string
	// RefreshInterval is the minimum time between two JWKS fetches.
	RefreshInterval time.Duration
	// KeyTTL is how long a fetched key stays cached.
	KeyTTL time.Duration
}

// CognitoIssuer is the issuer claim of tokens from the given user pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// JWKSVerifier verifies RS256 tokens against a rotating public key set.
type JWKSVerifier struct {
	issuer   string
	jwksURL  string
	client   *http.Client
	cache    KeyCache
	keyTTL   time.Duration
	minFetch time.Duration

	mu        sync.Mutex
	lastFetch time.Time
	now       func() time.Time
}

// NewJWKSVerifier creates a verifier. cache must not be nil.
func NewJWKSVerifier(cfg JWKSConfig, cache KeyCache, client *http.Client) (*JWKSVerifier, error) {
	issuer := cfg.Issuer
	if issuer == "" {
		if cfg.Region == "" || cfg.UserPoolID == "" {
			return nil, errors.New("region and user pool id are required")
		}
		issuer = CognitoIssuer(cfg.Region, cfg.UserPoolID)
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}
	if cache == nil {
		return nil, errors.New("key cache is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	keyTTL := cfg.KeyTTL
	if keyTTL <= 0 {
		keyTTL = 24 * time.Hour
	}
	minFetch := cfg.RefreshInterval
	if minFetch <= 0 {
		minFetch = time.Minute
	}

	return &JWKSVerifier{
		issuer:   issuer,
		jwksURL:  jwksURL,
		client:   client,
		cache:    cache,
		keyTTL:   keyTTL,
		minFetch: minFetch,
		now:      time.Now,
	}, nil
}

// Verify enforces RS256, the issuer and expiry.
func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKeyID
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, ErrJWKSUnavailable) {
			return nil, apperrors.NewUpstreamError("cognito-jwks", err)
		}
		return nil, invalidToken(err)
	}
	if claims.Subject == "" {
		return nil, invalidToken(jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}

func (v *JWKSVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := v.cached(ctx, kid); ok {
		return k, nil
	}
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	if k, ok := v.cached(ctx, kid); ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
}

func (v *JWKSVerifier) cached(ctx context.Context, kid string) (*rsa.PublicKey, bool) {
	raw, ok := v.cache.Get(ctx, "jwks:"+kid)
	if !ok {
		return nil, false
	}
	k, ok := raw.(*rsa.PublicKey)
	return k, ok
}

// refresh fetches the key set at most once per minFetch. Only a successful
// fetch starts the throttle window.
func (v *JWKSVerifier) refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if !v.lastFetch.IsZero() && now.Sub(v.lastFetch) < v.minFetch {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrJWKSUnavailable, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch: %v", ErrJWKSUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrJWKSUnavailable, resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrJWKSUnavailable, err)
	}
	v.lastFetch = now

	for _, k := range set.Keys {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, ok := k.Key.(*rsa.PublicKey)
		if !ok || k.KeyID == "" {
			continue
		}
		_ = v.cache.Set(ctx, "jwks:"+k.KeyID, pub, v.keyTTL)
	}
	return nil
}

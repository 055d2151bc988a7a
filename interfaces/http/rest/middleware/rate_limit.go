package middleware

import (
	"net/http"
	"strings"

	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"

	"go.uber.org/zap"
)

// KeyFunc derives the rate limit key for a request. An empty key skips the limit.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by the client address.
func ByClientIP(r *http.Request) string {
	return auth.IPKey(clientIP(r))
}

// ByCaller keys requests by the authenticated caller. It must run after Authenticate.
func ByCaller(r *http.Request) string {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		return ""
	}
	return auth.UserKey(caller.UserID)
}

// RateLimit rejects requests over the limiter's budget with 429.
func RateLimit(limiter auth.RateLimiter, key KeyFunc, errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), k)
			if err != nil {
				logger.Error("Rate limiter error", zap.String("key", k), zap.Error(err))
				errs.Handle(w, r, apperrors.NewInternalError("rate limiter unavailable").WithCause(err))
				return
			}
			if !allowed {
				errs.Handle(w, r, apperrors.NewRateLimitError("Rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses the right-most X-Forwarded-For hop, which the nearest proxy
// (API Gateway, a load balancer) appended, then RemoteAddr. Earlier hops and
// X-Real-IP are client controlled and ignored.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

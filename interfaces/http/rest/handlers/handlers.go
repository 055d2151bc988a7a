// Package handlers adapts HTTP requests to the application services. Every
// handler returns an error which the error boundary turns into an envelope.
package handlers

import (
	"net/http"
	"net/url"

	"crud-microservices/pkg/auth"

	"github.com/go-chi/chi/v5"
)

// caller returns the authenticated caller, or nil when the route is public.
// Services answer nil callers with 401.
func caller(r *http.Request) *auth.CallerIdentity {
	c, _ := auth.CallerFromContext(r.Context())
	return c
}

// objectKey returns the wildcard part of a /files/* route, unescaped.
func objectKey(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}

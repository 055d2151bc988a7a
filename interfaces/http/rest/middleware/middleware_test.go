package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/observability"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type extractorFunc func(r *http.Request) (*auth.CallerIdentity, error)

func (f extractorFunc) Extract(r *http.Request) (*auth.CallerIdentity, error) { return f(r) }

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockLimiter) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestAuthenticate(t *testing.T) {
	errs := apperrors.NewErrorHandler(zap.NewNop(), false)
	tracer := observability.NewTracer("test", false)

	t.Run("stores caller", func(t *testing.T) {
		extractor := extractorFunc(func(*http.Request) (*auth.CallerIdentity, error) {
			return &auth.CallerIdentity{UserID: "u-1"}, nil
		})
		var seen string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := auth.RequireCaller(r.Context())
			require.NoError(t, err)
			seen = caller.UserID
		})

		rec := httptest.NewRecorder()
		Authenticate(extractor, errs, tracer, zap.NewNop())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u-1", seen)
	})

	t.Run("rejects with envelope", func(t *testing.T) {
		extractor := extractorFunc(func(*http.Request) (*auth.CallerIdentity, error) {
			return nil, apperrors.NewAuthenticationError("Unauthorized").WithCode(apperrors.CodeAuthRequired)
		})

		rec := httptest.NewRecorder()
		Authenticate(extractor, errs, tracer, zap.NewNop())(noContent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, envelope{Message: "Unauthorized", Code: apperrors.CodeAuthRequired}, decode(t, rec))
	})
}

func TestRateLimit(t *testing.T) {
	errs := apperrors.NewErrorHandler(zap.NewNop(), false)

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.Header.Set("X-Forwarded-For", "10.9.9.9, 203.0.113.7")
		return req
	}

	t.Run("allowed", func(t *testing.T) {
		limiter := &mockLimiter{}
		limiter.On("Allow", mock.Anything, "ip:203.0.113.7").Return(true, nil)

		rec := httptest.NewRecorder()
		RateLimit(limiter, ByClientIP, errs, zap.NewNop())(noContent).ServeHTTP(rec, newRequest())

		assert.Equal(t, http.StatusNoContent, rec.Code)
		limiter.AssertExpectations(t)
	})

	t.Run("over limit", func(t *testing.T) {
		limiter := &mockLimiter{}
		limiter.On("Allow", mock.Anything, "ip:203.0.113.7").Return(false, nil)

		rec := httptest.NewRecorder()
		RateLimit(limiter, ByClientIP, errs, zap.NewNop())(noContent).ServeHTTP(rec, newRequest())

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, apperrors.CodeRateLimited, decode(t, rec).Code)
	})

	t.Run("limiter failure", func(t *testing.T) {
		limiter := &mockLimiter{}
		limiter.On("Allow", mock.Anything, mock.Anything).Return(false, errors.New("throttled"))

		rec := httptest.NewRecorder()
		RateLimit(limiter, ByClientIP, errs, zap.NewNop())(noContent).ServeHTTP(rec, newRequest())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decode(t, rec).Message)
	})

	t.Run("anonymous callers skip the user limit", func(t *testing.T) {
		limiter := &mockLimiter{}

		rec := httptest.NewRecorder()
		RateLimit(limiter, ByCaller, errs, zap.NewNop())(noContent).ServeHTTP(rec, newRequest())

		assert.Equal(t, http.StatusNoContent, rec.Code)
		limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
	})

	t.Run("spoofed leading hops share one budget", func(t *testing.T) {
		limiter := &mockLimiter{}
		limiter.On("Allow", mock.Anything, "ip:203.0.113.7").Return(false, nil).Twice()

		for _, spoofed := range []string{"1.1.1.1", "2.2.2.2"} {
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			req.Header.Set("X-Forwarded-For", spoofed+", 203.0.113.7")
			rec := httptest.NewRecorder()
			RateLimit(limiter, ByClientIP, errs, zap.NewNop())(noContent).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
		limiter.AssertExpectations(t)
	})

	t.Run("nil limiter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RateLimit(nil, ByClientIP, errs, zap.NewNop())(noContent).ServeHTTP(rec, newRequest())

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"proxy appended hop", map[string]string{"X-Forwarded-For": " 198.51.100.1 , 203.0.113.9 "}, "10.0.0.2:1234", "203.0.113.9"},
		{"single hop", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "10.0.0.2:1234", "198.51.100.1"},
		{"real ip ignored", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.2:1234", "10.0.0.2"},
		{"empty last hop", map[string]string{"X-Forwarded-For": "198.51.100.1, "}, "10.0.0.2:1234", "10.0.0.2"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"no port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestLogger_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{}"))
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req = req.WithContext(auth.WithCaller(req.Context(), &auth.CallerIdentity{UserID: "u-7"}))

	Logger(zap.New(core))(next).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, int64(2), fields["bytes"])
	assert.Equal(t, "u-7", fields["userId"])
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	prom := observability.NewPrometheus("test")

	r := chi.NewRouter()
	r.Use(Metrics(prom, nil))
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(prom.HTTPRequests.WithLabelValues("GET", "/users/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

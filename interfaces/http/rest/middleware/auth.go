package middleware

import (
	"net/http"

	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/observability"

	"go.uber.org/zap"
)

// Authenticate resolves the caller with extractor and stores it on the
// request context. Requests without a usable credential get a 401 envelope.
func Authenticate(extractor auth.Extractor, errs *apperrors.ErrorHandler, tracer *observability.Tracer, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := extractor.Extract(r)
			if err != nil {
				errs.Handle(w, r, err)
				return
			}

			tracer.AddAnnotation(r.Context(), "userId", caller.UserID)
			logger.Debug("Request authenticated",
				zap.String("user_id", caller.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

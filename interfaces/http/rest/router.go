package rest

import (
	"net/http"

	"crud-microservices/interfaces/http/rest/handlers"
	"crud-microservices/interfaces/http/rest/middleware"
	"crud-microservices/pkg/auth"
	"crud-microservices/pkg/common"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handlers groups the resource handlers the router mounts.
type Handlers struct {
	Users    *handlers.UserHandler
	Products *handlers.ProductHandler
	Orders   *handlers.OrderHandler
	Files    *handlers.FileHandler
	Auth     *handlers.AuthHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

// Options tune the cross-cutting middleware.
type Options struct {
	CORSOrigins []string
	// IPLimiter runs before authentication, UserLimiter after. Either may be nil.
	IPLimiter   auth.RateLimiter
	UserLimiter auth.RateLimiter
}

// Router creates and configures the HTTP router
type Router struct {
	handlers   Handlers
	extractor  auth.Extractor
	errs       *apperrors.ErrorHandler
	prometheus *observability.Prometheus
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	h Handlers,
	extractor auth.Extractor,
	errs *apperrors.ErrorHandler,
	prometheus *observability.Prometheus,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		handlers:   h,
		extractor:  extractor,
		errs:       errs,
		prometheus: prometheus,
		metrics:    metrics,
		tracer:     tracer,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	wrap := rt.errs.Wrap

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errs.Middleware)
	router.Use(middleware.Metrics(rt.prometheus, rt.metrics))

	origins := rt.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RateLimit(rt.opts.IPLimiter, middleware.ByClientIP, rt.errs, rt.logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, "", "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusMethodNotAllowed, "", "Method not allowed")
	})

	// Public endpoints
	router.Get("/health", wrap(rt.handlers.Health.Check))
	if rt.prometheus != nil {
		router.Handle("/metrics", rt.prometheus.Handler())
	}
	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", wrap(rt.handlers.Auth.SignUp))
		r.Post("/signin", wrap(rt.handlers.Auth.SignIn))
		r.Post("/confirm", wrap(rt.handlers.Auth.Confirm))
	})

	// Authenticated endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.extractor, rt.errs, rt.tracer, rt.logger))
		r.Use(middleware.RateLimit(rt.opts.UserLimiter, middleware.ByCaller, rt.errs, rt.logger))

		r.Get("/auth/profile", wrap(rt.handlers.Auth.Profile))
		r.Get("/admin/stats", wrap(rt.handlers.Admin.Stats))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", wrap(rt.handlers.Users.CreateUser))
			r.Get("/{id}", wrap(rt.handlers.Users.GetUser))
			r.Put("/{id}", wrap(rt.handlers.Users.UpdateUser))
			r.Delete("/{id}", wrap(rt.handlers.Users.DeleteUser))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", wrap(rt.handlers.Products.CreateProduct))
			r.Get("/", wrap(rt.handlers.Products.ListProducts))
			r.Get("/{id}", wrap(rt.handlers.Products.GetProduct))
			r.Put("/{id}", wrap(rt.handlers.Products.UpdateProduct))
			r.Delete("/{id}", wrap(rt.handlers.Products.DeleteProduct))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", wrap(rt.handlers.Orders.CreateOrder))
			r.Get("/{id}", wrap(rt.handlers.Orders.GetOrder))
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", wrap(rt.handlers.Files.Upload))
			r.Get("/", wrap(rt.handlers.Files.ListFiles))
			r.Post("/upload-url", wrap(rt.handlers.Files.UploadURL))
			r.Get("/*", wrap(rt.handlers.Files.GetFile))
			r.Delete("/*", wrap(rt.handlers.Files.DeleteFile))
		})
	})

	return rt.tracer.Handler(router)
}

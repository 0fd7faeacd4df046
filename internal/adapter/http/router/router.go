package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/handler"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/middleware"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/metrics"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/ratelimit"
)

type Policies struct {
	Auth   ratelimit.Policy
	Upload ratelimit.Policy
}

type Deps struct {
	Auth           *handler.AuthHandler
	Property       *handler.PropertyHandler
	Health         *handler.HealthHandler
	Tokens         middleware.AccessTokenParser
	Proxies        *middleware.ProxyTrust
	Limiter        *ratelimit.Limiter
	Policies       Policies
	Metrics        *metrics.Manager
	Logger         *logger.Logger
	AllowedOrigins []string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(d.Logger.Named("HTTP"), d.Metrics, d.Proxies))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/", d.Health.Root)
	r.Get("/healthz", d.Health.Ready)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	SetupAuthRoutes(r, d)
	SetupPropertyRoutes(r, d)
	return r
}

// SetupAuthRoutes mounts /api/auth; every route shares the auth rate limit.
func SetupAuthRoutes(r chi.Router, d Deps) {
	limit := middleware.RateLimit(d.Limiter, d.Policies.Auth, d.Metrics, d.Proxies)

	r.Route("/api/auth", func(ar chi.Router) {
		ar.Method(http.MethodPost, "/signup", middleware.Chain(http.HandlerFunc(d.Auth.Signup), limit))
		ar.Method(http.MethodPost, "/verify-otp", middleware.Chain(http.HandlerFunc(d.Auth.VerifyOTP), limit))
		ar.Method(http.MethodPost, "/login", middleware.Chain(http.HandlerFunc(d.Auth.Login), limit))
		ar.Method(http.MethodPost, "/refresh-token", middleware.Chain(http.HandlerFunc(d.Auth.RefreshToken), limit))
	})
}

// SetupPropertyRoutes mounts /api/property behind the bearer guard.
// Registration is additionally limited by the upload policy, checked after
// the guard.
func SetupPropertyRoutes(r chi.Router, d Deps) {
	guard := middleware.BearerGuard(d.Tokens)
	uploadLimit := middleware.RateLimit(d.Limiter, d.Policies.Upload, d.Metrics, d.Proxies)

	r.Route("/api/property", func(pr chi.Router) {
		pr.Method(http.MethodPost, "/register", middleware.Chain(http.HandlerFunc(d.Property.Register), guard, uploadLimit))
		pr.Method(http.MethodGet, "/my-properties", middleware.Chain(http.HandlerFunc(d.Property.MyProperties), guard))
	})
}

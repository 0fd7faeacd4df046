package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/handler"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/middleware"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/router"
	natsadapter "github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/messaging/nats"
	redisadapter "github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/redis"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/repository/mongodb"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/storage/s3"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/token"
	authusecase "github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/usecase"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/mailer"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/metrics"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/tracer"
	propusecase "github.com/Monkfuego/rentsetu-prereleasebe/internal/property/usecase"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/ratelimit"
)

const (
	appName          = "rentsetu-api"
	metricsNamespace = "rentsetu"
)

var initTracer = tracer.Init

type eventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	server         *http.Server
	mongoClient    *mongo.Client
	redisClient    *goredis.Client
	natsPublisher  *natsadapter.Publisher
	shutdownTracer func(context.Context) error
}

// New connects every backing service and builds the HTTP server. Optional
// services (Redis, NATS, tracing) are skipped when not configured.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	shutdownTracer, err := initTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	log.Info("Initializing MongoDB client...")
	a.mongoClient, err = mongodb.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	db := a.mongoClient.Database(cfg.MongoDB.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		a.close(ctx)
		return nil, err
	}
	log.Info("MongoDB client initialized", "database", cfg.MongoDB.Database)

	storage, err := s3.NewS3Storage(ctx, cfg.MinIO, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	var events eventPublisher = natsadapter.NoopPublisher{}
	if cfg.NATS.URL != "" {
		a.natsPublisher, err = natsadapter.NewPublisher(cfg.NATS.URL, log, appName)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		events = a.natsPublisher
	} else {
		log.Info("NATS_URL not set, domain events disabled")
	}

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		a.redisClient, err = redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory rate limit store", "addr", cfg.Redis.Addr, "error", err.Error())
		} else {
			store = ratelimit.NewRedisStore(a.redisClient)
			log.Info("Rate limiter backed by Redis", "addr", cfg.Redis.Addr)
		}
	}

	proxies, err := middleware.NewProxyTrust(cfg.HTTPServer.TrustedProxies)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	metricsManager := metrics.NewManager(metricsNamespace)
	tokens := token.NewManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	authUC := authusecase.NewAuthUsecase(
		mongodb.NewUserRepository(db),
		mailer.New(cfg.SMTP, log),
		events,
		tokens,
		cfg.OTP.TTL,
		log.Named("AuthUsecase"),
	)
	propertyUC := propusecase.NewPropertyUsecase(
		mongodb.NewPropertyRepository(db),
		storage,
		events,
		metricsManager,
		log.Named("PropertyUsecase"),
	)

	mongoClient := a.mongoClient
	handlerTree := router.New(router.Deps{
		Auth:     handler.NewAuthHandler(authUC, log),
		Property: handler.NewPropertyHandler(propertyUC, log),
		Health: handler.NewHealthHandler(func(ctx context.Context) error {
			return mongodb.Ping(ctx, mongoClient)
		}, log),
		Tokens:  tokens,
		Proxies: proxies,
		Limiter: ratelimit.NewLimiter(store, log),
		Policies: router.Policies{
			Auth: ratelimit.Policy{
				Name:    "auth",
				Limit:   cfg.RateLimit.AuthLimit,
				Window:  cfg.RateLimit.AuthWindow,
				Message: "Too many requests, please try again after 15 minutes",
			},
			Upload: ratelimit.Policy{
				Name:    "upload",
				Limit:   cfg.RateLimit.UploadLimit,
				Window:  cfg.RateLimit.UploadWindow,
				Message: "Too many upload requests, please try again after 15 minutes",
			},
		},
		Metrics:        metricsManager,
		Logger:         log,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         net.JoinHostPort("", cfg.HTTPServer.Port),
		Handler:      handlerTree,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	return a, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server", "addr", a.server.Addr, "env", a.cfg.Env)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal, shutting down", "signal", sig.String())
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("Error during HTTP server shutdown", "error", err.Error())
	} else {
		a.log.Info("HTTP server stopped")
	}
	a.close(ctx)
	a.log.Info("Application shut down")
	return runErr
}

func (a *App) close(ctx context.Context) {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", "error", err.Error())
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", "error", err.Error())
		}
	}
	if a.natsPublisher != nil {
		a.natsPublisher.Close()
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.log.Error("Error shutting down tracer", "error", err.Error())
		}
	}
}

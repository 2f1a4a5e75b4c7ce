package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/EdDevbr/FluxTotemBackEnd/internal/app"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/config"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/database"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/gateway"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/handler"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/http/middleware"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/observability"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/repository"
	"github.com/EdDevbr/FluxTotemBackEnd/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var RuntimeInfraSet = wire.NewSet(provideOpenDB)

var RepositorySet = wire.NewSet(
	repository.NewOrderRepository,
	repository.NewPaymentAttemptRepository,
)

var GatewaySet = wire.NewSet(provideProviderClient)

var ServiceSet = wire.NewSet(
	service.NewPaymentService,
	wire.Bind(new(handler.PaymentOrchestrator), new(*service.PaymentService)),
)

var HTTPSet = wire.NewSet(
	handler.NewOrderHandler,
	handler.NewPaymentHandler,
	provideWebhookHandler,
	handler.NewHealthHandler,
	provideWebhookRateLimiter,
	handler.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg.Env, cfg.LogLevel)
}

func provideOpenDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database ready")
	return db, nil
}

func provideProviderClient(cfg *config.Config) (gateway.ProviderClient, error) {
	token, err := cfg.ResolveProviderToken()
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(cfg.ProviderBaseURL, token, cfg.WebhookCallbackURL, cfg.ProviderTimeout), nil
}

func provideWebhookHandler(svc handler.PaymentOrchestrator, cfg *config.Config, logger *slog.Logger) *handler.WebhookHandler {
	return handler.NewWebhookHandler(svc, cfg.WebhookSecret, cfg.ProviderTimeout, logger)
}

// provideWebhookRateLimiter picks Redis-backed counting when REDIS_URL is
// set so replicas share one window, and falls back to an in-process window
// otherwise. The webhook path fails open: a broken limiter backend must not
// make the provider retry deliveries.
func provideWebhookRateLimiter(cfg *config.Config) (*middleware.RateLimiter, error) {
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		limiter = middleware.NewRedisFixedWindowLimiter(redis.NewClient(opts), "webhook")
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}

	rl := middleware.NewRateLimiter(limiter, cfg.WebhookRateLimitPerMin, cfg.WebhookRateLimitWindow, middleware.FailOpen, "webhook")
	if len(cfg.WebhookTrustedCIDRs) > 0 {
		rl = rl.WithBypass(middleware.NewRequestBypassEvaluator(middleware.RequestBypassConfig{
			EnableInternalProbeBypass: true,
			TrustedSourceCIDRs:        cfg.WebhookTrustedCIDRs,
		}))
	}
	return rl, nil
}

func provideHTTPServer(cfg *config.Config, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// MigrationRunner opens the database and applies migrations without
// starting the HTTP server.
type MigrationRunner struct {
	cfg *config.Config
}

func NewMigrationRunner(cfg *config.Config) *MigrationRunner {
	return &MigrationRunner{cfg: cfg}
}

func (m *MigrationRunner) Run() error {
	db, err := database.Open(m.cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	return database.Migrate(db)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sso-gateway/internal/api/http"
	"github.com/spec-kit/sso-gateway/internal/api/http/handlers"
	"github.com/spec-kit/sso-gateway/internal/auth"
	"github.com/spec-kit/sso-gateway/internal/config"
	"github.com/spec-kit/sso-gateway/internal/events"
	"github.com/spec-kit/sso-gateway/internal/identity"
	"github.com/spec-kit/sso-gateway/internal/observability"
	"github.com/spec-kit/sso-gateway/internal/persistence"
	"github.com/spec-kit/sso-gateway/internal/repository"
	"github.com/spec-kit/sso-gateway/internal/service"
	"github.com/spec-kit/sso-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	codec, err := auth.NewSessionCodec(cfg.SSO.SessionSecret, cfg.SSO.Algorithm, cfg.SSO.AppName)
	if err != nil {
		logger.Fatal("failed to build session codec", zap.Error(err))
	}
	sessionVerifier, err := auth.NewVerifier(cfg.SSO.SessionSecret, cfg.SSO.Algorithm)
	if err != nil {
		logger.Fatal("failed to build session verifier", zap.Error(err))
	}
	externalVerifier, err := auth.NewVerifier(cfg.SSO.ExternalSecret, cfg.SSO.Algorithm)
	if err != nil {
		logger.Fatal("failed to build external verifier", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	worker.StartAuditWorker(auditService)

	var resolver identity.Resolver
	switch cfg.SSO.ResolverMode {
	case config.ResolverModeRemote:
		resolver = identity.NewRemoteResolver(codec, cfg.SSO.VerificationURL,
			cfg.SSO.VerificationTTL(), cfg.SSO.VerificationTimeout(), logger)
	default:
		accessRepo := repository.NewAccessRepository(pg.PoolHandle())
		resolver = identity.NewDirectResolver(accessRepo, cfg.SSO.AppName, logger)
	}
	if ttl := cfg.SSO.ResolverCacheTTL(); ttl > 0 {
		resolver = identity.NewCachedResolver(resolver, redis.Client, ttl)
	}

	ssoService := service.NewSSOService(externalVerifier, resolver, codec, dispatcher, logger)
	roleGate := auth.NewRoleGate(sessionVerifier, dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		SSO:       handlers.NewSSOHandler(ssoService, cfg.SSO),
		Dashboard: handlers.NewDashboardHandler(sessionVerifier, cfg.SSO),
		RoleGate:  roleGate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

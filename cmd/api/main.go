package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pos-backend/api/routes"
	"github.com/angelmondragon/pos-backend/internal/auth"
	products "github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/internal/sales"
	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/auth/session"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db"
	"github.com/angelmondragon/pos-backend/pkg/instance"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/metrics"
	"github.com/angelmondragon/pos-backend/pkg/migrate"
	"github.com/angelmondragon/pos-backend/pkg/outbox"
	"github.com/angelmondragon/pos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	services, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	obs := routes.Observability{
		HTTP:     metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, services, obs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:               dbClient,
		SessionManager:   sessionManager,
		JWTConfig:        cfg.JWT,
		PasswordConfig:   cfg.Password,
		AllowAdminSignup: cfg.FeatureFlags.AllowAdminSignup,
	})
	if err != nil {
		return routes.Services{}, err
	}

	adminUsers, err := auth.NewAdminUserService(auth.AdminUserServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		DB:       dbClient,
		Repo:     sales.NewRepository(dbClient.DB()),
		Products: productRepo,
		Outbox:   outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Config:   cfg.Sales,
		Metrics:  metrics.NewSaleMetrics(prometheus.DefaultRegisterer),
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:       authService,
		Register:   registerService,
		AdminUsers: adminUsers,
		Products:   productService,
		Sales:      salesService,
	}, nil
}

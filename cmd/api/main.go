package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tollnet/interop-backoffice/api/routes"
	"github.com/tollnet/interop-backoffice/internal/auth"
	"github.com/tollnet/interop-backoffice/internal/debts"
	"github.com/tollnet/interop-backoffice/internal/operators"
	"github.com/tollnet/interop-backoffice/internal/passes"
	"github.com/tollnet/interop-backoffice/internal/reports"
	"github.com/tollnet/interop-backoffice/internal/stations"
	"github.com/tollnet/interop-backoffice/pkg/auth/session"
	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/db"
	"github.com/tollnet/interop-backoffice/pkg/logger"
	"github.com/tollnet/interop-backoffice/pkg/metrics"
	"github.com/tollnet/interop-backoffice/pkg/migrate"
	"github.com/tollnet/interop-backoffice/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	operatorsRepo := operators.NewRepository(gdb)

	operatorsService, err := operators.NewService(operatorsRepo, cfg.Password, cfg.Admin)
	if err != nil {
		logg.Error(context.Background(), "failed to create operators service", err)
		os.Exit(1)
	}
	if err := operatorsService.EnsureAdmin(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to bootstrap admin account", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(operatorsRepo, sessionManager, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	passesService, err := passes.NewService(passes.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create passes service", err)
		os.Exit(1)
	}
	debtsService, err := debts.NewService(debts.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create debts service", err)
		os.Exit(1)
	}
	reportsService, err := reports.NewService(reports.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}
	stationsService, err := stations.NewService(stations.NewRepository(gdb), dbClient, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create stations service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Registry:    registry,
		Auth:        authService,
		Passes:      passesService,
		Debts:       debtsService,
		Reports:     reportsService,
		Stations:    stationsService,
		Operators:   operatorsService,
		HTTPMetrics: httpMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

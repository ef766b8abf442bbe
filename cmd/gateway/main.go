package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dizimoapp/payments-gateway-go/internal/config"
	"github.com/dizimoapp/payments-gateway-go/internal/handler"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/postgres"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/resilience"
	"github.com/dizimoapp/payments-gateway-go/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("company_id", cfg.CompanyID),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("config_cache_ttl", cfg.ConfigCacheTTL),
		zap.Duration("token_safety_margin", cfg.TokenSafetyMargin),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "payments-gateway")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	var pool *pgxpool.Pool
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	err = resilience.RetryWithBackoff(connectCtx, resilience.Config{
		MaxRetries:     5,
		InitialBackoff: time.Second,
	}, func() error {
		var connErr error
		pool, connErr = postgres.Connect(connectCtx, cfg.DatabaseURL)
		return connErr
	})
	cancelConnect()
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	store := postgres.NewStore(pool, logger)

	// --- Bank plumbing ---
	transports := bank.NewTransportCache()
	cb := resilience.NewCircuitBreaker("bank-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)
	exec := bank.NewExecutor(store, metrics, logger, cfg.RequestTimeout, cb, bulkhead)
	tokens := bank.NewTokenManager(transports, exec, metrics, logger, cfg.TokenSafetyMargin)

	// --- Services ---
	configSvc := service.NewConfigService(store, cfg.ConfigCacheTTL, metrics, logger)
	routerSvc := service.NewRouterService(store, logger)
	pixSvc := service.NewPixService(routerSvc, configSvc, tokens, transports, exec, metrics, logger)
	boletoSvc := service.NewBoletoService(routerSvc, configSvc, tokens, transports, exec, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Pix:            pixSvc,
		Boleto:         boletoSvc,
		Router:         routerSvc,
		Store:          store,
		Metrics:        metrics,
		JWTSecret:      cfg.JWTSecret,
		DefaultCompany: cfg.CompanyID,
		Logger:         logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

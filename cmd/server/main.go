package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/kevin07696/checkout-service/internal/adapters/mock"
	checkoutapi "github.com/kevin07696/checkout-service/internal/api/http"
	"github.com/kevin07696/checkout-service/internal/config"
	"github.com/kevin07696/checkout-service/internal/services/checkout"
	"github.com/kevin07696/checkout-service/internal/services/methods"
	"github.com/kevin07696/checkout-service/pkg/logging"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	zapLogger := initLogger(cfg.Logger)
	defer zapLogger.Sync()
	logger := logging.NewZapLogger(zapLogger)

	zapLogger.Info("Starting checkout service",
		zap.String("version", "0.1.0"),
		zap.Int("port", cfg.Server.Port),
	)

	// Deterministic fakes stand in for the payment SDK backend
	collaborators := mock.NewCollaborators()

	// One orchestrator per session; handlers carry per-session
	// authorization gates, so they are built fresh each time.
	factory := func() *checkout.Orchestrator {
		registry := methods.NewRegistry(
			methods.NewCardHandler(collaborators, collaborators, collaborators, logger,
				cfg.Checkout.MPINLength, cfg.Checkout.MaxAuthAttempts),
			methods.NewUPIHandler(collaborators, logger, mock.UPIApps()),
			methods.NewNetBankingHandler(collaborators, logger, mock.Banks()),
			methods.NewWalletHandler(collaborators, logger, mock.Wallets()),
			methods.NewEMIHandler(collaborators, collaborators, logger),
			methods.NewFXDebitCardHandler(collaborators, collaborators, logger, mock.FXCurrencies(),
				cfg.Checkout.OTPLength, cfg.Checkout.MaxAuthAttempts),
		)
		return checkout.NewOrchestrator(collaborators, registry, logger)
	}

	store := checkoutapi.NewSessionStore(factory)
	api := checkoutapi.NewAPI(store, collaborators, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(observability.HTTPMiddleware)
	api.AppendRoutes(router)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", observability.MetricsHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		zapLogger.Info("API server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		zapLogger.Info("Metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		zapLogger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		zapLogger.Fatal("Server error", zap.Error(err))
	}
	zapLogger.Info("Stopped")
}

// initLogger builds the zap logger from config
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	return logger
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/gastroshop/storefront/internal/application/cart"
	appcheckout "github.com/gastroshop/storefront/internal/application/checkout"
	"github.com/gastroshop/storefront/internal/domain/cart"
	"github.com/gastroshop/storefront/internal/infrastructure/auth"
	"github.com/gastroshop/storefront/internal/infrastructure/cache"
	"github.com/gastroshop/storefront/internal/infrastructure/config"
	"github.com/gastroshop/storefront/internal/infrastructure/logger"
	"github.com/gastroshop/storefront/internal/infrastructure/scheduler"
	"github.com/gastroshop/storefront/internal/infrastructure/storage"
	"github.com/gastroshop/storefront/internal/infrastructure/storefront"
	"github.com/gastroshop/storefront/internal/infrastructure/telemetry"
	"github.com/gastroshop/storefront/internal/interfaces/http/dto"
	"github.com/gastroshop/storefront/internal/interfaces/http/handler"
	"github.com/gastroshop/storefront/internal/interfaces/http/router"
)

const healthProbeKey = "storefront.health"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("api", cfg.API.BaseURL),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	checkoutMetrics, err := telemetry.NewCheckoutMetrics(meterProvider.Meter("storefront/checkout"), log)
	if err != nil {
		log.Fatal("Failed to register checkout metrics", zap.Error(err))
	}

	// Device storage
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	// Remote storefront API
	client, err := storefront.NewClient(storefront.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		RetryWait:  cfg.API.RetryWait,
		MaxRetries: cfg.API.MaxRetries,
		Token:      cfg.API.Token,
	}, log)
	if err != nil {
		log.Fatal("Failed to create storefront client", zap.Error(err))
	}
	catalogClient := storefront.NewCatalogClient(client)
	orderClient := storefront.NewOrderClient(client)
	paymentClient := storefront.NewPaymentClient(client)

	// Cart ledger
	ledger := cart.NewLedger(storage.NewCartSnapshotStore(backend.Store))
	cartService := appcart.NewService(ledger, catalogClient, log)
	cartService.SetMetrics(checkoutMetrics)
	if err := cartService.Restore(ctx); err != nil {
		log.Warn("Failed to restore cart, starting empty", zap.Error(err))
	}

	// Checkout
	reconciler := appcheckout.NewReconciler(catalogClient, cfg.Checkout.ReconcileConcurrency, log)
	orchestrator := appcheckout.NewOrchestrator(
		ledger,
		reconciler,
		orderClient,
		paymentClient,
		storage.NewCorrelationStore(backend.Store),
		appcheckout.Config{
			ConfirmationDelay:  cfg.Checkout.ConfirmationDelay,
			ConfirmationPath:   cfg.Checkout.ConfirmationPath,
			MockGatewayEnabled: cfg.Checkout.MockGatewayEnabled,
			LockTTL:            cfg.Checkout.LockTTL,
			CompletionTimeout:  cfg.Checkout.CompletionTimeout,
		},
		log,
	)
	orchestrator.SetMetrics(checkoutMetrics)
	if cfg.Checkout.CrossTabLock {
		if backend.Redis != nil {
			orchestrator.SetSubmissionLock(cache.NewRedisLock(backend.Redis, cfg.Storage.KeyPrefix))
		} else {
			log.Info("Cross-tab lock has no shared backend, using in-process lock")
			orchestrator.SetSubmissionLock(cache.NewInMemoryLock())
		}
	}
	if cfg.Checkout.RequireAuth {
		orchestrator.SetSessionChecker(auth.NewSessionChecker(cfg.API.Token))
	}
	if _, err := orchestrator.Resume(ctx); err != nil {
		log.Warn("Failed to resume previous checkout", zap.Error(err))
	}

	var poller *scheduler.PaymentPoller
	if cfg.Checkout.PaymentPollInterval > 0 {
		pollerConfig := scheduler.DefaultPaymentPollerConfig()
		pollerConfig.Interval = cfg.Checkout.PaymentPollInterval
		pollerConfig.Timeout = cfg.API.Timeout
		poller, err = scheduler.NewPaymentPoller(pollerConfig, orchestrator, log)
		if err != nil {
			log.Fatal("Failed to create payment poller", zap.Error(err))
		}
		if err := poller.Start(ctx); err != nil {
			log.Fatal("Failed to start payment poller", zap.Error(err))
		}
	}

	// HTTP
	engine := router.NewEngine(cfg, log)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version)
	systemHandler.AddCheck("storage", func(ctx context.Context) error {
		_, _, err := backend.Store.Get(ctx, healthProbeKey)
		return err
	})
	if backend.Redis != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return backend.Redis.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(handler.NewCartHandler(cartService)).
		Register(handler.NewCheckoutHandler(orchestrator))
	if cfg.Checkout.MockGatewayEnabled {
		r.RegisterRoot(handler.NewMockGatewayHandler(orchestrator))
	}
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if poller != nil {
		if err := poller.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop payment poller", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
}

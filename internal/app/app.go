package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nbprates/internal/adapters/cache"
	"nbprates/internal/adapters/httpclient"
	"nbprates/internal/adapters/postgres"
	"nbprates/internal/api"
	"nbprates/internal/config"
	"nbprates/internal/metrics"
	"nbprates/internal/platform/db"
	httpserver "nbprates/internal/platform/http"
	"nbprates/internal/rate"
	"nbprates/internal/rate/handler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	if err = db.Migrate(startupCtx, pool); err != nil {
		logrus.WithError(err).Error("Error migrating db")
		return err
	}
	logrus.Info("✅ Migrations applied")

	// Base HTTP client (configurable timeout)
	httpTimeout := appCfg.HTTPClient.Timeout()
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	nbpClient := httpclient.NewNbpClient(&http.Client{Timeout: httpTimeout}, appCfg.NbpAPI.BaseURL)

	rateCache, err := cache.NewRateCache(appCfg.Cache.MaxItems, appCfg.Cache.TTL())
	if err != nil {
		logrus.WithError(err).Error("Failed to create rate cache")
		return err
	}
	defer rateCache.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	refreshMetrics := metrics.NewRefreshMetrics(registry)

	// Services
	rateRepo := postgres.NewRateRepository(pool)
	reconciler := rate.NewReconciler(rateRepo, rateCache)
	rateService := rate.NewService(rateRepo, rateCache, reconciler, nil)
	refresher := rate.NewRefresher(nbpClient, reconciler, refreshMetrics, appCfg.NbpAPI.WindowDays, nil)

	scheduler := rate.NewScheduler(refresher, appCfg.Scheduler.Interval())
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	limitRate, err := limiter.NewRateFromFormatted(appCfg.HTTPServer.RateLimit)
	if err != nil {
		logrus.WithError(err).Error("Invalid http_server.rate_limit")
		return err
	}
	rateHandler := handler.NewRateHandler(rateService, refresher)
	router := api.NewRouter(rateHandler, api.RouterOptions{
		AllowedOrigins: appCfg.HTTPServer.AllowedOrigins,
		Limiter:        limiter.New(memory.NewStore(), limitRate),
		Gatherer:       registry,
	})

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

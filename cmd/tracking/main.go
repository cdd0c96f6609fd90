package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/piresc/triptrack/internal/pkg/config"
	"github.com/piresc/triptrack/internal/pkg/health"
	"github.com/piresc/triptrack/internal/pkg/logger"
	"github.com/piresc/triptrack/internal/pkg/metrics"
	"github.com/piresc/triptrack/internal/pkg/middleware"
	natspkg "github.com/piresc/triptrack/internal/pkg/nats"
	nrpkg "github.com/piresc/triptrack/internal/pkg/newrelic"
	"github.com/piresc/triptrack/internal/pkg/server"
	"github.com/piresc/triptrack/services/tracking"
	"github.com/piresc/triptrack/services/tracking/dispatcher"
	"github.com/piresc/triptrack/services/tracking/gateway"
	"github.com/piresc/triptrack/services/tracking/handler"
	"github.com/piresc/triptrack/services/tracking/repository"
	"github.com/piresc/triptrack/services/tracking/usecase"
)

func main() {
	configs := config.InitConfig("config/tracking.env")
	appName := configs.App.Name

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
	)

	collector := metrics.NewCollector()
	shutdown := server.NewShutdownManager(zapLogger)

	// NATS is optional; without it events are only delivered to local streams
	var natsClient *natspkg.Client
	var trackingGW tracking.TrackingGW
	if configs.NATS.URL != "" {
		natsClient, err = natspkg.NewClient(configs.NATS.URL, appName, collector.NATSConnected)
		if err != nil {
			zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
		}
		trackingGW = gateway.NewTrackingGW(natsClient.GetConn())
		shutdown.Register("nats", func(context.Context) error {
			natsClient.Close()
			return nil
		})
	}

	// Initialize repository and dispatcher
	store := repository.NewPositionStore(
		repository.WithStaleAfter(time.Duration(configs.Tracking.StaleAfter)*time.Second),
		repository.WithMetrics(collector),
	)
	streams := dispatcher.NewStreamDispatcher(store,
		dispatcher.WithKeepAliveInterval(time.Duration(configs.Tracking.KeepAliveInterval)*time.Second),
		dispatcher.WithBufferSize(configs.Tracking.SubscriberBuffer),
		dispatcher.WithMetrics(collector),
	)
	store.AddListener(streams)
	collector.TrackTrips(store.Len)

	// Initialize usecase
	trackingUC := usecase.NewTrackingUC(store, streams, trackingGW, collector)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true

	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.ZapEchoMiddleware(zapLogger))
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))

	// Register health endpoints
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, map[string]health.Checker{
		"nats": health.NewNATSChecker(natsClient),
	})

	if configs.Metrics.Enabled {
		e.GET(configs.Metrics.Path, echo.WrapHandler(collector.Handler()))
	}

	// Register service routes
	handler.NewHTTPHandler(trackingUC, configs).RegisterRoutes(e)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	if configs.Tracking.SweepInterval > 0 {
		go sweepStale(sweepCtx, store, time.Duration(configs.Tracking.SweepInterval)*time.Second)
	}

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Host, configs.Server.Port,
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	// streams never finish on their own, so end them before echo waits on handlers
	srv.OnShutdown(streams.Close)

	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with error", logger.String("app", appName), logger.Err(err))
	}

	stopSweep()
	streams.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown.Shutdown(ctx); err != nil {
		zapLogger.Error("Shutdown finished with errors", logger.Err(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
	zapLogger.Info("Application stopped", logger.String("app", appName))
	_ = zapLogger.Close()
}

func sweepStale(ctx context.Context, store tracking.PositionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.PurgeStale(); n > 0 {
				logger.Debug("Purged stale positions", logger.Int("count", n))
			}
		}
	}
}

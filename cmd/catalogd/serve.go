package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopwave-catalog/config"
	"shopwave-catalog/engine"
	"shopwave-catalog/events"
	api "shopwave-catalog/go"
	"shopwave-catalog/observability"
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		Long: `The serve command loads the catalog from the configured store, builds the
autocomplete and SKU indexes, and serves the HTTP API. /health answers 503 until
the first index build completes. With EVENTS_SOURCE set, product mutation events
from SQS or Redis are applied while serving.

Example:
  STORE_BACKEND=memory STORE_SEED_SIZE=5000 catalogd serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if addrFlag != "" {
		cfg.ServerAddress = addrFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Failed to sync logger: %v", err)
		}
	}()

	var metrics *observability.Collector
	if cfg.MetricsEnabled {
		metrics = observability.NewCollector("catalog")
	}

	if cfg.TracingEnabled {
		tp, err := observability.InitTracing(ctx, "shopwave-catalog", cfg.Environment, cfg.TracingOTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	clients := &awsClients{region: cfg.AWSRegion}
	st, err := buildStore(ctx, cfg, clients, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(st.read, engine.Options{
		RecentlyViewedCapacity: cfg.Engine.RecentlyViewedCapacity,
		SuggestLimit:           cfg.Engine.SuggestLimit,
		MaxSuggestLimit:        cfg.Engine.MaxSuggestLimit,
		SKUFallbackScan:        cfg.SKUFallbackScan(),
	}, logger.Named("engine"), metrics)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Events.Source == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Events.RedisAddr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  -1, // pub/sub receives block
			WriteTimeout: time.Second,
		})
		defer rdb.Close()
	}

	publisher, err := buildPublisher(ctx, cfg, clients, rdb)
	if err != nil {
		return err
	}
	applier := events.NewApplier(st.writer, eng, logger.Named("events"), metrics)
	source, err := buildSource(ctx, cfg, clients, rdb, applier, logger.Named("events"))
	if err != nil {
		return err
	}

	var breaker api.BreakerState
	if st.breaker != nil {
		breaker = st.breaker
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Handlers{
		Products: api.NewProductsAPI(eng, logger.Named("api"), cfg.Engine.RelatedDepth),
		Events:   api.NewCatalogEventsAPI(publisher, logger.Named("api")),
		Health:   api.NewHealthAPI(eng, breaker),
		Metrics:  metrics,
		Logger:   logger.Named("http"),
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.Store.Backend),
			zap.String("events", cfg.Events.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("listen on %s: %w", cfg.ServerAddress, err)
		}
	}()

	go rebuildUntilReady(ctx, eng, logger)

	sourceDone := make(chan error, 1)
	sourceRunning := source != nil
	if sourceRunning {
		go func() { sourceDone <- source.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	case err := <-sourceDone:
		sourceRunning = false
		if err != nil {
			logger.Error("event source stopped; serving without live updates", zap.Error(err))
		}
		<-ctx.Done()
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if sourceRunning {
		select {
		case <-sourceDone:
		case <-shutdownCtx.Done():
			logger.Warn("event source did not drain before shutdown deadline")
		}
	}
	logger.Info("Server stopped")
	return nil
}

// rebuildUntilReady retries the startup index build until it succeeds or ctx ends.
func rebuildUntilReady(ctx context.Context, eng *engine.Engine, logger *zap.Logger) {
	delay := time.Second
	for {
		err := eng.Rebuild(ctx)
		if err == nil {
			return
		}
		logger.Error("index rebuild failed", zap.Error(err), zap.Duration("retry_in", delay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, 30*time.Second)
	}
}

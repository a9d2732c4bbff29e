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
	"github.com/joho/godotenv"
	"github.com/m-karthika14/mindmirrorai/internal/cache"
	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/database"
	logger "github.com/m-karthika14/mindmirrorai/internal/logging"
	"github.com/m-karthika14/mindmirrorai/internal/handlers"
	"github.com/m-karthika14/mindmirrorai/internal/metrics"
	"github.com/m-karthika14/mindmirrorai/internal/narrative"
	"github.com/m-karthika14/mindmirrorai/internal/observability"
	"github.com/m-karthika14/mindmirrorai/internal/repository"
	"github.com/m-karthika14/mindmirrorai/internal/router"
	"github.com/m-karthika14/mindmirrorai/internal/services"
	"go.uber.org/zap"
)

func main() {
	projectRoot := os.Getenv("MINDMIRROR_ROOT")
	if projectRoot == "" {
		projectRoot = "."
	}

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load(projectRoot + "/.env")

	bootstrap, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}

	// Initialize Config
	if err := config.Init(projectRoot, bootstrap); err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}
	conf := config.Conf

	// Initialize Logger
	log, err := logger.Init(projectRoot, conf.Logging)
	if err != nil {
		bootstrap.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	gin.SetMode(conf.Server.Mode)

	// Initialize Database
	if err := database.Init(conf.Database, log); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	table, err := metrics.LoadScoringTable(conf.Scoring.ThresholdsFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("Thresholds file not found, using built-in thresholds", zap.String("path", conf.Scoring.ThresholdsFile))
		defaults := metrics.DefaultScoringTable()
		table = &defaults
	case err != nil:
		log.Fatal("Failed to load thresholds", zap.Error(err))
	}
	scorer := metrics.NewScorer(*table)

	reportCache, err := cache.New(conf.Redis, log)
	if err != nil {
		log.Warn("Report cache unavailable, continuing without it", zap.Error(err))
		reportCache = cache.Nop{}
	}
	defer reportCache.Close()

	shutdownTracing, err := observability.Init(context.Background(), conf.Tracing, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
	}()

	var generator narrative.Generator
	client, err := narrative.New(conf.Narrative)
	switch {
	case errors.Is(err, narrative.ErrDisabled):
		log.Info("Narrative model not configured, reports get the plain summary")
	case err != nil:
		log.Fatal("Failed to configure narrative client", zap.Error(err))
	default:
		generator = client
	}
	narrator := narrative.NewNarrator(generator, conf.Narrative.Timeout, metrics.RenderSummary)

	retention := services.NewRetentionScheduler(log, conf.Retention, repository.PurgeBefore)
	if err := retention.Start(); err != nil {
		log.Fatal("Failed to start retention scheduler", zap.Error(err))
	}
	defer retention.Stop()

	r := router.Setup(log, router.Deps{
		Server:      conf.Server,
		ServiceName: conf.Tracing.ServiceName,
		Scoring: handlers.NewScoringHandler(log, scorer, reportCache, handlers.BatchOptions{
			Limit:   conf.Server.BatchLimit,
			Workers: conf.Server.BatchWorkers,
		}),
		Reports: handlers.NewReportsHandler(log, reportCache, narrator),
	})

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shut down", zap.Error(err))
	}
}

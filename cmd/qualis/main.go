package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Qualis/internal/api"
	"github.com/MikeSquared-Agency/Qualis/internal/config"
	"github.com/MikeSquared-Agency/Qualis/internal/hermes"
	"github.com/MikeSquared-Agency/Qualis/internal/intake"
	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
	"github.com/MikeSquared-Agency/Qualis/internal/registry"
	"github.com/MikeSquared-Agency/Qualis/internal/scoring"
	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Questionnaire
	var reg registry.Client
	if cfg.Registry.URL != "" {
		reg = registry.NewHTTPClient(cfg.Registry.URL, cfg.RegistryTimeout())
	}
	catalogue, err := loadCatalogue(ctx, cfg.Questionnaire, reg)
	if err != nil {
		logger.Error("failed to load questionnaire", "error", err)
		os.Exit(1)
	}
	logger.Info("questionnaire loaded",
		"name", catalogue.Name(),
		"version", catalogue.Version(),
		"subscales", catalogue.Keys(),
	)
	engine := scoring.NewEngine(catalogue)

	// Database
	db, err := store.Open(ctx, store.Driver(cfg.Database.Driver), cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	svc := intake.NewService(engine, db, hermesClient, logger)

	// Intake worker
	var worker *intake.Worker
	if cfg.Intake.Enabled && hermesClient != nil {
		worker = intake.NewWorker(svc, hermesClient, cfg.Intake, logger)
		if err := worker.Start(ctx); err != nil {
			logger.Error("failed to start intake worker", "error", err)
			os.Exit(1)
		}
		logger.Info("intake worker started", "workers", cfg.Intake.Workers, "subject", hermes.SubjectAssessmentSubmitted)
	}

	// API server
	router := api.NewRouter(svc, db, cfg.Server, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	// Drain queued submissions while the store and hermes are still open.
	if worker != nil {
		worker.Stop()
	}
	cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

// loadCatalogue resolves the questionnaire: registry first, then a local
// file, then the built-in FACT-G. A configured source that fails is fatal.
func loadCatalogue(ctx context.Context, cfg config.QuestionnaireConfig, reg registry.Client) (*questionnaire.Catalogue, error) {
	if reg != nil {
		c, err := reg.GetQuestionnaire(ctx, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		return c, nil
	}
	if cfg.Path != "" {
		return questionnaire.LoadFile(cfg.Path)
	}
	return questionnaire.FACTG(), nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

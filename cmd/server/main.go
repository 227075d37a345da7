package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careerhub-go/internal/config"
	"github.com/careerhub-go/internal/handlers"
	"github.com/careerhub-go/internal/i18n"
	"github.com/careerhub-go/internal/middleware"
	"github.com/careerhub-go/internal/services/ai"
	"github.com/careerhub-go/internal/services/cache"
	"github.com/careerhub-go/internal/services/match"
	"github.com/careerhub-go/internal/services/store"
	"github.com/careerhub-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting careerhub server...")

	// Debug: log key length, never the key itself
	log.WithField("api_key_length", len(cfg.AI.APIKey)).Info("Generation credential loaded")

	// Initialize storage
	storageManager, err := store.NewManager(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	// Initialize metrics
	metrics := middleware.NewMetrics()

	// Initialize generation client with its process-wide rate-limit state
	rateState := ai.NewRateLimitState()
	aiClient := ai.NewClient(&cfg.AI, rateState, log)
	aiClient.OnFallback = metrics.RecordFallback

	// Initialize cache
	cacheService := cache.NewCache(cfg, log)

	// Initialize match queue
	matchQueue := match.NewQueue(storageManager.GetRedisClient(), log)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg, log)

	// Initialize i18n
	localizer, err := i18n.NewLocalizer(&cfg.I18n)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Start metrics server if enabled
	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Initialize handlers
	generateHandler := handlers.NewGenerateHandler(
		cfg,
		aiClient,
		cacheService,
		rateLimiter,
		localizer,
		metrics,
		log,
	)

	projectHandler := handlers.NewProjectHandler(
		cfg,
		storageManager,
		matchQueue,
		localizer,
		metrics,
		log,
	)

	router := handlers.NewRouter(generateHandler, projectHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	log.Info("Server stopped")
}

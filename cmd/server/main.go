package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/unalkalkan/bucketblob/internal/config"
	"github.com/unalkalkan/bucketblob/internal/health"
	"github.com/unalkalkan/bucketblob/internal/logger"
	"github.com/unalkalkan/bucketblob/internal/metrics"
	"github.com/unalkalkan/bucketblob/internal/storage"
	"github.com/unalkalkan/bucketblob/pkg/types"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/dev.example.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	log.Info().Str("version", version).Str("config", *configPath).Msg("starting blob store server")

	var opts []storage.Option
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, storage.WithMetrics(m))
	}

	ctx := logger.WithContext(context.Background(),
		logger.WithValues(&log.Logger, "bucket", cfg.Storage.Bucket, "client", cfg.Storage.Client))
	store, err := storage.Open(ctx, cfg.Storage, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open blob store")
	}
	defer store.Close()

	root := store.BlobContainer(types.ParseBlobPath(cfg.Storage.BasePath))
	log.Info().
		Str("client", cfg.Storage.Client).
		Str("bucket", store.Bucket()).
		Str("path", root.Path().BuildAsString()).
		Msg("blob store ready")

	// Initialize health checks
	healthHandler := health.NewHandler(version)
	healthHandler.Register("bucket", health.BlobStoreCheck(root, ".healthcheck"))
	log.Info().Strs("checks", healthHandler.Names()).Msg("health checks registered")

	// Set up HTTP server and routes
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", healthHandler.LivenessHandler())
	mux.HandleFunc("/health/ready", healthHandler.ReadinessHandler())
	mux.HandleFunc("/api/v1/info", infoHandler(version, cfg))
	if m != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// infoHandler returns basic server information
func infoHandler(version string, cfg *types.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"version": version,
			"client":  cfg.Storage.Client,
			"bucket":  cfg.Storage.Bucket,
			"path":    cfg.Storage.BasePath,
		})
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/royal450/reelgrab/internal/api"
	"github.com/royal450/reelgrab/internal/api/handler"
	"github.com/royal450/reelgrab/internal/cleanup"
	"github.com/royal450/reelgrab/internal/config"
	"github.com/royal450/reelgrab/internal/extractor"
	"github.com/royal450/reelgrab/internal/fetcher"
	"github.com/royal450/reelgrab/internal/service"
	"github.com/royal450/reelgrab/pkg/ffmpeg"
	"github.com/royal450/reelgrab/pkg/ytdlp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reelgrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Local development convenience; absent .env is fine
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting reelgrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the downloads root and its sweep sentinel exist
	if err := os.MkdirAll(cfg.Storage.DownloadsPath, 0755); err != nil {
		logger.Error("failed to create downloads directory", "error", err)
		os.Exit(1)
	}
	sentinel := filepath.Join(cfg.Storage.DownloadsPath, cfg.Storage.SentinelName)
	if _, err := os.Stat(sentinel); os.IsNotExist(err) {
		if err := os.WriteFile(sentinel, nil, 0644); err != nil {
			logger.Error("failed to create sweep sentinel", "error", err)
			os.Exit(1)
		}
	}

	// Initialize dependencies
	runner := ytdlp.NewExecRunner()
	if !runner.Available() {
		logger.Warn("yt-dlp not found, downloads will fall back to placeholders")
	}
	encoder := ffmpeg.NewFFmpegEncoder()
	if !encoder.Available() {
		logger.Warn("ffmpeg not found, placeholders will use stub headers")
	}
	synth := ffmpeg.NewSynthesizer(encoder, cfg.Storage.DownloadsPath, logger)

	// Initialize services
	ext := extractor.New(cfg.Extract, runner, logger)
	fet := fetcher.New(runner, synth, cfg.Storage.DownloadsPath, cfg.Download, logger)
	reelSvc := service.New(ext, fet, logger)

	// Background lifecycle
	sweeper := cleanup.NewSweeper(cfg.Cleanup, cfg.Storage, logger)
	sweeper.Start()

	pinger := service.NewPinger(cfg.Keepalive, logger)
	pinger.Start()

	// Initialize handlers
	pageHandler := handler.NewPageHandler(reelSvc, logger)
	downloadHandler := handler.NewDownloadHandler(reelSvc, sweeper, logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage.DownloadsPath)

	// Setup router
	router := api.NewRouter(pageHandler, downloadHandler, healthHandler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop background loops
	pinger.Stop()
	sweeper.Stop()

	logger.Info("shutdown complete")
}
